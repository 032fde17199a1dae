package models

import "time"

// Виды записей журнала. Значения хранятся как есть - формат унаследован
// от старого бота, поэтому не переименовываем.
const (
	KindEntry = "entrada" // начало смены
	KindExit  = "salida"  // конец смены
)

// AttendanceRecord - одно событие входа/выхода со смены. Записи только
// добавляются: после записи в журнал они не изменяются и не удаляются.
type AttendanceRecord struct {
	Kind     string    `json:"tipo"`
	Stamp    time.Time `json:"fecha"`
	Username string    `json:"username"`
}

// IsEntry проверяет, является ли запись началом смены
func (r *AttendanceRecord) IsEntry() bool {
	return r.Kind == KindEntry
}

// IsExit проверяет, является ли запись концом смены
func (r *AttendanceRecord) IsExit() bool {
	return r.Kind == KindExit
}

// IsValid проверяет валидность данных
func (r *AttendanceRecord) IsValid() bool {
	if r.Kind != KindEntry && r.Kind != KindExit {
		return false
	}
	if r.Stamp.IsZero() {
		return false
	}
	return true
}

// Records - история событий одного пользователя в порядке добавления
type Records []AttendanceRecord

// CountKind возвращает количество записей указанного вида
func (rs Records) CountKind(kind string) int {
	count := 0
	for i := range rs {
		if rs[i].Kind == kind {
			count++
		}
	}
	return count
}

// OnDuty проверяет, находится ли пользователь на смене: входов строго
// больше, чем выходов
func (rs Records) OnDuty() bool {
	return rs.CountKind(KindEntry) > rs.CountKind(KindExit)
}

// OpenEntry возвращает запись начала текущей открытой смены (последний
// вход) или nil, если пользователь не на смене
func (rs Records) OpenEntry() *AttendanceRecord {
	if !rs.OnDuty() {
		return nil
	}
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].IsEntry() {
			return &rs[i]
		}
	}
	return nil
}

// FirstUsername возвращает имя из самой первой записи пользователя.
// Имя не обновляется при смене никнейма - так вел себя старый бот,
// и сводки/рейтинги сохраняют это поведение.
func (rs Records) FirstUsername() string {
	if len(rs) == 0 || rs[0].Username == "" {
		return "Usuario"
	}
	return rs[0].Username
}

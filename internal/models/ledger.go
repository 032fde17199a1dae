package models

import (
	"sort"
	"time"
)

// Ledger - журнал посещаемости: chat ID пользователя -> его история
// событий. Единственный источник истины о том, кто сейчас на смене.
type Ledger map[string]Records

// UserIDs возвращает идентификаторы пользователей в отсортированном
// порядке, чтобы обход журнала был детерминированным
func (l Ledger) UserIDs() []string {
	ids := make([]string, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RankingEntry - строка рейтинга отработанных часов
type RankingEntry struct {
	DisplayName string  `json:"display_name"`
	Hours       float64 `json:"hours"`
}

// LedgerRow - представление записи журнала в SQLite-бэкенде.
// Порядок добавления сохраняется автоинкрементным id.
type LedgerRow struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	UserID   string    `gorm:"not null;index" json:"user_id"`
	Kind     string    `gorm:"type:varchar(10);not null" json:"kind"`
	Stamp    time.Time `gorm:"not null" json:"stamp"`
	Username string    `json:"username"`
}

// TableName задает имя таблицы в БД
func (LedgerRow) TableName() string {
	return "attendance_records"
}

// Record преобразует строку таблицы в запись журнала
func (row *LedgerRow) Record() AttendanceRecord {
	return AttendanceRecord{
		Kind:     row.Kind,
		Stamp:    row.Stamp,
		Username: row.Username,
	}
}

package service

import (
	"errors"
	"math"
	"sort"
	"time"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

// ErrInvalidWindow - некорректный диапазон дней для сводки или рейтинга
var ErrInvalidWindow = errors.New("диапазон дней должен быть положительным")

// ReportService считает отработанные часы по журналу: сводка по одному
// пользователю и рейтинг по всем. Журнал не изменяет.
type ReportService struct {
	ledgerRepo repository.LedgerRepository
	logger     *logrus.Logger
	now        func() time.Time
}

func NewReportService(ledgerRepo repository.LedgerRepository) *ReportService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &ReportService{
		ledgerRepo: ledgerRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// FilterWindow возвращает записи за последние days дней включительно,
// сохраняя исходный порядок. Записи с датой в будущем отбрасываются.
func (s *ReportService) FilterWindow(records models.Records, days int) (models.Records, error) {
	if days <= 0 {
		return nil, ErrInvalidWindow
	}

	now := s.now()
	from := now.AddDate(0, 0, -days)

	filtered := make(models.Records, 0, len(records))
	for _, record := range records {
		if record.Stamp.Before(from) || record.Stamp.After(now) {
			continue
		}
		filtered = append(filtered, record)
	}

	return filtered, nil
}

// ComputeHours суммирует продолжительности смен: k-й вход сопоставляется
// с k-м выходом, непарные записи отбрасываются. Сопоставление позиционное,
// как в старом боте: после принудительных закрытий или правок задним
// числом пары могут не совпадать с реальной хронологией смен.
func ComputeHours(records models.Records) float64 {
	var entries, exits models.Records
	for _, record := range records {
		if record.IsEntry() {
			entries = append(entries, record)
		} else if record.IsExit() {
			exits = append(exits, record)
		}
	}

	pairs := len(entries)
	if len(exits) < pairs {
		pairs = len(exits)
	}

	var total time.Duration
	for i := 0; i < pairs; i++ {
		total += exits[i].Stamp.Sub(entries[i].Stamp)
	}

	return math.Round(total.Hours()*100) / 100
}

// Summary возвращает часы пользователя за последние days дней
func (s *ReportService) Summary(userID string, days int) (float64, error) {
	if days <= 0 {
		return 0, ErrInvalidWindow
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"days":    days,
	}).Debug("Computing summary")

	ledger, err := s.ledgerRepo.Load()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load ledger")
		return 0, err
	}

	filtered, err := s.FilterWindow(ledger[userID], days)
	if err != nil {
		return 0, err
	}

	return ComputeHours(filtered), nil
}

// Ranking строит рейтинг пользователей по часам за последние days дней.
// Имя берется из самой первой записи пользователя, пользователи без
// отработанных часов не попадают в список. Пользователи обходятся в
// отсортированном порядке, поэтому при равных часах результат стабилен.
func (s *ReportService) Ranking(days int) ([]models.RankingEntry, error) {
	if days <= 0 {
		return nil, ErrInvalidWindow
	}

	s.logger.WithField("days", days).Debug("Computing ranking")

	ledger, err := s.ledgerRepo.Load()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load ledger")
		return nil, err
	}

	ranking := make([]models.RankingEntry, 0, len(ledger))
	for _, userID := range ledger.UserIDs() {
		records := ledger[userID]

		filtered, err := s.FilterWindow(records, days)
		if err != nil {
			return nil, err
		}

		hours := ComputeHours(filtered)
		if hours <= 0 {
			continue
		}

		ranking = append(ranking, models.RankingEntry{
			DisplayName: records.FirstUsername(),
			Hours:       hours,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Hours > ranking[j].Hours
	})

	s.logger.WithFields(logrus.Fields{
		"days":  days,
		"users": len(ranking),
	}).Debug("Ranking computed")

	return ranking, nil
}

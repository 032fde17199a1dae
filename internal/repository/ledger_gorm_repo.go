package repository

import (
	"errors"
	"fmt"

	"attendance-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GormLedgerRepository - альтернативный бэкенд журнала во встраиваемой
// транзакционной БД. Порядок добавления записей фиксируется
// автоинкрементным id, семантика та же, что у файлового бэкенда.
type GormLedgerRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormLedgerRepository(db *gorm.DB) (*GormLedgerRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// Автомиграция
	if err := db.AutoMigrate(&models.LedgerRow{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendance_records table")
		return nil, fmt.Errorf("%w: миграция attendance_records: %v", ErrPersistence, err)
	}

	logger.Info("Gorm ledger repository initialized")

	return &GormLedgerRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormLedgerRepository) Append(userID string, record models.AttendanceRecord) error {
	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"kind":    record.Kind,
	}).Info("Appending attendance record")

	if !record.IsValid() {
		r.logger.WithField("user_id", userID).Warn("Invalid attendance record")
		return errors.New("некорректная запись журнала")
	}

	row := models.LedgerRow{
		UserID:   userID,
		Kind:     record.Kind,
		Stamp:    record.Stamp,
		Username: record.Username,
	}

	result := r.db.Create(&row)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to insert attendance record")
		return fmt.Errorf("%w: вставка записи: %v", ErrPersistence, result.Error)
	}

	r.logger.WithFields(logrus.Fields{
		"id":      row.ID,
		"user_id": userID,
		"kind":    record.Kind,
	}).Info("Attendance record appended")

	return nil
}

func (r *GormLedgerRepository) Load() (models.Ledger, error) {
	var rows []models.LedgerRow

	result := r.db.Order("id ASC").Find(&rows)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to load attendance records")
		return nil, fmt.Errorf("%w: чтение записей: %v", ErrPersistence, result.Error)
	}

	ledger := models.Ledger{}
	for i := range rows {
		ledger[rows[i].UserID] = append(ledger[rows[i].UserID], rows[i].Record())
	}

	r.logger.WithFields(logrus.Fields{
		"users":   len(ledger),
		"records": len(rows),
	}).Debug("Ledger loaded")

	return ledger, nil
}

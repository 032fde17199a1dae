package service

import (
	"errors"
	"sync"
	"time"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

var (
	// ErrAlreadyOnDuty - попытка отметить вход при открытой смене
	ErrAlreadyOnDuty = errors.New("пользователь уже на смене")
	// ErrNotOnDuty - попытка отметить выход без открытой смены
	ErrNotOnDuty = errors.New("пользователь не на смене")
)

// AttendanceService отвечает за переходы вход/выход. Текущее состояние
// пользователя нигде не хранится - оно каждый раз выводится из журнала
// по количеству входов и выходов. Все мутации проходят через один
// мьютекс, чтобы два одновременных события не потеряли запись друг друга.
type AttendanceService struct {
	ledgerRepo repository.LedgerRepository
	mu         sync.Mutex
	logger     *logrus.Logger
	now        func() time.Time
}

func NewAttendanceService(ledgerRepo repository.LedgerRepository) *AttendanceService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &AttendanceService{
		ledgerRepo: ledgerRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// OnDuty проверяет, находится ли пользователь на смене
func (s *AttendanceService) OnDuty(userID string) (bool, error) {
	ledger, err := s.ledgerRepo.Load()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load ledger")
		return false, err
	}

	return ledger[userID].OnDuty(), nil
}

// ClockIn отмечает начало смены
func (s *AttendanceService) ClockIn(userID, username string) (models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"username": username,
	}).Info("User clocking in")

	ledger, err := s.ledgerRepo.Load()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load ledger")
		return models.AttendanceRecord{}, err
	}

	if ledger[userID].OnDuty() {
		s.logger.WithField("user_id", userID).Warn("User already on duty")
		return models.AttendanceRecord{}, ErrAlreadyOnDuty
	}

	record := models.AttendanceRecord{
		Kind:     models.KindEntry,
		Stamp:    s.now(),
		Username: username,
	}

	if err := s.ledgerRepo.Append(userID, record); err != nil {
		s.logger.WithError(err).Error("Failed to append entry record")
		return models.AttendanceRecord{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"stamp":   record.Stamp.Format("15:04:05"),
	}).Info("User clocked in")

	return record, nil
}

// ClockOut отмечает конец смены и возвращает ее продолжительность -
// время от последнего входа до текущего момента
func (s *AttendanceService) ClockOut(userID, username string) (models.AttendanceRecord, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"username": username,
	}).Info("User clocking out")

	ledger, err := s.ledgerRepo.Load()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load ledger")
		return models.AttendanceRecord{}, 0, err
	}

	openEntry := ledger[userID].OpenEntry()
	if openEntry == nil {
		s.logger.WithField("user_id", userID).Warn("User not on duty")
		return models.AttendanceRecord{}, 0, ErrNotOnDuty
	}

	record := models.AttendanceRecord{
		Kind:     models.KindExit,
		Stamp:    s.now(),
		Username: username,
	}

	if err := s.ledgerRepo.Append(userID, record); err != nil {
		s.logger.WithError(err).Error("Failed to append exit record")
		return models.AttendanceRecord{}, 0, err
	}

	elapsed := record.Stamp.Sub(openEntry.Stamp)

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"elapsed": elapsed.String(),
	}).Info("User clocked out")

	return record, elapsed, nil
}

// ForceClockOut принудительно закрывает смену пользователя. Возвращает
// false без ошибки, если смена и так закрыта. Проверка прав на вызов -
// забота вызывающего слоя.
func (s *AttendanceService) ForceClockOut(userID, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.ledgerRepo.Load()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load ledger")
		return false, err
	}

	return s.forceClockOutLocked(ledger, userID, username)
}

// ForceClockOutAll закрывает все открытые смены и возвращает количество
// затронутых пользователей
func (s *AttendanceService) ForceClockOutAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Forcing clock out for all users on duty")

	ledger, err := s.ledgerRepo.Load()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load ledger")
		return 0, err
	}

	affected := 0
	for _, userID := range ledger.UserIDs() {
		forced, err := s.forceClockOutLocked(ledger, userID, ledger[userID].FirstUsername())
		if err != nil {
			return affected, err
		}
		if forced {
			affected++
		}
	}

	s.logger.WithField("affected", affected).Info("Forced clock out completed")

	return affected, nil
}

// forceClockOutLocked дописывает выход, если пользователь на смене.
// Вызывается только под мьютексом и с уже загруженным журналом.
func (s *AttendanceService) forceClockOutLocked(ledger models.Ledger, userID, username string) (bool, error) {
	if !ledger[userID].OnDuty() {
		s.logger.WithField("user_id", userID).Debug("No open shift to force close")
		return false, nil
	}

	if username == "" {
		username = ledger[userID].FirstUsername()
	}

	record := models.AttendanceRecord{
		Kind:     models.KindExit,
		Stamp:    s.now(),
		Username: username,
	}

	if err := s.ledgerRepo.Append(userID, record); err != nil {
		s.logger.WithError(err).Error("Failed to append forced exit record")
		return false, err
	}

	// Журнал уже загружен вызывающим - отражаем запись и в нем,
	// чтобы повторное закрытие того же пользователя осталось no-op
	ledger[userID] = append(ledger[userID], record)

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"username": username,
	}).Info("Forced clock out for user")

	return true, nil
}

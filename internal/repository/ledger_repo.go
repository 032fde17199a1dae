package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"attendance-bot/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrPersistence помечает любой сбой чтения или записи хранилища журнала.
// Запись при этом не считается зафиксированной, вызывающий может повторить.
var ErrPersistence = errors.New("хранилище журнала недоступно")

type LedgerRepository interface {
	Append(userID string, record models.AttendanceRecord) error
	Load() (models.Ledger, error)
}

// FileLedgerRepository хранит журнал целиком в одном JSON-файле в формате
// старого бота: { "<userId>": [ { "tipo", "fecha", "username" }, ... ] }.
// Каждый Append - это загрузить весь журнал, дописать запись и записать
// результат во временный файл с последующим rename: при падении посреди
// записи на диске остается либо старый, либо новый целый файл.
type FileLedgerRepository struct {
	path   string
	mu     sync.RWMutex
	logger *logrus.Logger
}

func NewFileLedgerRepository(path string) (*FileLedgerRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if path == "" {
		return nil, errors.New("не задан путь к файлу журнала")
	}

	repo := &FileLedgerRepository{
		path:   path,
		logger: logger,
	}

	// Проверяем, что существующий файл читается
	if _, err := repo.Load(); err != nil {
		logger.WithError(err).Error("Failed to read existing ledger file")
		return nil, err
	}

	logger.WithField("path", path).Info("File ledger repository initialized")

	return repo, nil
}

func (r *FileLedgerRepository) Append(userID string, record models.AttendanceRecord) error {
	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"kind":    record.Kind,
	}).Info("Appending attendance record")

	if !record.IsValid() {
		r.logger.WithField("user_id", userID).Warn("Invalid attendance record")
		return errors.New("некорректная запись журнала")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, err := r.load()
	if err != nil {
		return err
	}

	ledger[userID] = append(ledger[userID], record)

	if err := r.write(ledger); err != nil {
		r.logger.WithError(err).Error("Failed to write ledger")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"kind":    record.Kind,
		"total":   len(ledger[userID]),
	}).Info("Attendance record appended")

	return nil
}

func (r *FileLedgerRepository) Load() (models.Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load()
}

func (r *FileLedgerRepository) load() (models.Ledger, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		// Файла еще нет - пустой журнал
		return models.Ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: чтение %s: %v", ErrPersistence, r.path, err)
	}

	ledger := models.Ledger{}
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("%w: разбор %s: %v", ErrPersistence, r.path, err)
	}

	return ledger, nil
}

// write записывает журнал атомарно: временный файл в том же каталоге,
// fsync, затем rename поверх старого
func (r *FileLedgerRepository) write(ledger models.Ledger) error {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: сериализация журнала: %v", ErrPersistence, err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: создание временного файла: %v", ErrPersistence, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: запись %s: %v", ErrPersistence, tmp.Name(), err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: fsync %s: %v", ErrPersistence, tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: закрытие %s: %v", ErrPersistence, tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: переименование в %s: %v", ErrPersistence, r.path, err)
	}

	return nil
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"attendance-bot/internal/config"
	"attendance-bot/internal/handler"
	"attendance-bot/internal/repository"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/telegram"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetBotConfig()
	logrus.Info("Config initialized...")

	// Инициализируем SQLite базу данных (пользователи и, при
	// соответствующем бэкенде, журнал посещаемости)
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true, // SQLite ограничения
	})
	if err != nil {
		logrus.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatal("Failed to get database instance:", err)
	}

	userRepo, err := repository.NewUserRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create user repository")
	}

	// Выбираем бэкенд журнала посещаемости
	var ledgerRepo repository.LedgerRepository
	switch cfg.LedgerBackend {
	case config.LedgerBackendSQLite:
		ledgerRepo, err = repository.NewGormLedgerRepository(db)
	default:
		ledgerRepo, err = repository.NewFileLedgerRepository(cfg.LedgerPath)
	}
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create ledger repository")
	}

	logrus.Infof("Ledger backend: %s", cfg.LedgerBackend)

	userService := service.NewUserService(userRepo)
	attendanceService := service.NewAttendanceService(ledgerRepo)
	reportService := service.NewReportService(ledgerRepo)

	// Инициализируем администратора из конфига
	if err := userService.InitializeAdmin(cfg.BaseAdminChatID); err != nil {
		logrus.Infof("Warning: Failed to initialize admin: %v", err)
	} else if cfg.BaseAdminChatID != 0 {
		logrus.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	// Создаем клиент Telegram
	client, err := telegram.NewClient(cfg.TelegramToken)
	if err != nil {
		logrus.Fatal("Failed to create Telegram client:", err)
	}

	logrus.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(
		client,
		attendanceService,
		reportService,
		userService,
		cfg,
	)

	// Публикуем закрепленную панель с кнопками, если задан канал
	if cfg.PanelChatID != 0 {
		botHandler.SendPanel(cfg.PanelChatID)
	}

	// Настраиваем канал обновлений
	updates := client.Bot.GetUpdatesChan(client.UpdateConfig)

	// Обработка сигналов для graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Запускаем обработку сообщений
	go botHandler.HandleUpdates(updates)

	logrus.Info("Bot started. Press Ctrl+C to stop.")
	<-stop

	// Закрываем соединение с БД
	if err := sqlDB.Close(); err != nil {
		logrus.Infof("Error closing database: %v", err)
	}

	logrus.Info("Bot stopped gracefully")
}

package handler

import (
	"strconv"

	"attendance-bot/internal/config"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Время жизни эфемерных ответов бота
const (
	replyTTL   = 30 // секунд, подтверждения и сводки
	warningTTL = 10 // секунд, отказы и служебные сообщения
)

type Handler struct {
	client            *telegram.Client
	attendanceService *service.AttendanceService
	reportService     *service.ReportService
	userService       *service.UserService
	replyCache        *replyCache
	config            *config.BotConfig
}

func NewHandler(
	client *telegram.Client,
	attendanceService *service.AttendanceService,
	reportService *service.ReportService,
	userService *service.UserService,
	cfg *config.BotConfig,
) *Handler {
	return &Handler{
		client:            client,
		attendanceService: attendanceService,
		reportService:     reportService,
		userService:       userService,
		replyCache:        newReplyCache(),
		config:            cfg,
	}
}

func (h *Handler) HandleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		// Обработка callback query (кнопки панели)
		if update.CallbackQuery != nil {
			h.handleCallbackQuery(update.CallbackQuery)
			continue
		}

		if update.Message == nil {
			continue
		}

		h.handleMessage(update.Message)
	}
}

// handleCallbackQuery обрабатывает кнопки "на смену"/"со смены"
func (h *Handler) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	userID := strconv.FormatInt(callback.From.ID, 10)
	username := displayName(callback.From)

	switch callback.Data {
	case "entrada":
		h.clockIn(chatID, userID, username)
	case "salida":
		h.clockOut(chatID, userID, username)
	}

	// Отвечаем на callback (убираем "часики" у кнопки)
	callbackConfig := tgbotapi.NewCallback(callback.ID, "")
	h.client.Bot.Send(callbackConfig)
}

func (h *Handler) handleMessage(message *tgbotapi.Message) {
	logrus.Infof("[%s] %s", message.From.UserName, message.Text)

	// Регистрируем пользователя при первом контакте
	if _, err := h.userService.EnsureUser(message.From.ID, message.From.UserName, message.From.FirstName); err != nil {
		logrus.WithError(err).Warn("Failed to ensure user")
	}

	if message.IsCommand() {
		h.handleCommand(message)
	}
}

// displayName возвращает имя пользователя для записи в журнал
func displayName(from *tgbotapi.User) string {
	if from.UserName != "" {
		return from.UserName
	}
	return from.FirstName
}

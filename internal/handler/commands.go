package handler

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

func (h *Handler) handleCommand(message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	userID := strconv.FormatInt(message.From.ID, 10)
	username := displayName(message.From)

	switch command {
	case "start", "help":
		h.sendHelpMessage(message)

	// Отметки входа/выхода (дублируют кнопки панели)
	case "entrada", "in":
		h.clockIn(message.Chat.ID, userID, username)
	case "salida", "out":
		h.clockOut(message.Chat.ID, userID, username)
	case "estado", "status":
		h.showStatus(message)

	// Сводки и рейтинг
	case "resumen":
		h.showSummary(message, args)
	case "ranking":
		h.showRanking(message, args)

	// Команды администратора
	case "forzar_salida":
		h.forceClockOut(message, args)
	case "forzar_salida_todos":
		h.forceClockOutAll(message)
	case "admins":
		h.showAdmins(message)
	case "panel":
		h.sendPanel(message)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	userID := strconv.FormatInt(message.From.ID, 10)
	h.sendEphemeral(message.Chat.ID, userID, "❌ Неизвестная команда. Используйте /help для списка команд.", warningTTL)
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	text := `📋 Доступные команды:

⏰ Учет смен:
/entrada - Отметить вход на смену
/salida - Отметить выход со смены
/estado - Мой текущий статус

📊 Статистика:
/resumen dia|semana|mes - Мои часы за период
/ranking dia|semana|mes - Рейтинг по отработанным часам

👑 Администрирование:
/forzar_salida [ID ...] - Принудительно закрыть смены
/forzar_salida_todos - Закрыть все открытые смены
/admins - Показать администраторов
/panel - Опубликовать панель с кнопками

💡 Как пользоваться:
1. Отмечайте вход кнопкой панели или командой /entrada
2. Отмечайте выход кнопкой или командой /salida
3. Следите за часами командой /resumen`

	msg := tgbotapi.NewMessage(chatID, text)
	h.client.Bot.Send(msg)
}

// SendPanel публикует и закрепляет панель с кнопками входа/выхода
func (h *Handler) SendPanel(chatID int64) {
	text := `📢 Система учета смен

Отмечайте смены кнопками ниже:

🟢 Вход на смену
🔴 Выход со смены

📊 Команды /resumen и /ranking покажут отработанные часы.`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟢 Вход на смену", "entrada"),
			tgbotapi.NewInlineKeyboardButtonData("🔴 Выход со смены", "salida"),
		),
	)

	sent, err := h.client.Bot.Send(msg)
	if err != nil {
		logrus.WithError(err).Error("Failed to send panel message")
		return
	}

	pin := tgbotapi.PinChatMessageConfig{
		ChatID:              chatID,
		MessageID:           sent.MessageID,
		DisableNotification: true,
	}
	if _, err := h.client.Bot.Request(pin); err != nil {
		logrus.WithError(err).Warn("Failed to pin panel message")
	}
}

// sendPanel публикует панель по команде администратора
func (h *Handler) sendPanel(message *tgbotapi.Message) {
	userID := strconv.FormatInt(message.From.ID, 10)

	isAdmin, err := h.userService.IsAdmin(message.From.ID)
	if err != nil {
		h.sendEphemeral(message.Chat.ID, userID, "❌ Ошибка проверки прав доступа: "+err.Error(), warningTTL)
		return
	}

	if !isAdmin {
		h.sendEphemeral(message.Chat.ID, userID, "❌ Доступ запрещен. Эта команда только для администраторов.", warningTTL)
		return
	}

	h.SendPanel(message.Chat.ID)
}

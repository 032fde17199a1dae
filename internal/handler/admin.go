package handler

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// forceClockOut принудительно закрывает смены перечисленных пользователей
func (h *Handler) forceClockOut(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	userID := strconv.FormatInt(message.From.ID, 10)

	// Проверяем права доступа
	isAdmin, err := h.userService.IsAdmin(message.From.ID)
	if err != nil {
		h.sendEphemeral(chatID, userID, "❌ Ошибка проверки прав доступа: "+err.Error(), warningTTL)
		return
	}

	if !isAdmin {
		logrus.WithField("chat_id", message.From.ID).Warn("Unauthorized force clock out attempt")
		h.sendEphemeral(chatID, userID, "❌ Доступ запрещен. Эта команда только для администраторов.", warningTTL)
		return
	}

	targets := strings.Fields(args)
	if len(targets) == 0 {
		h.sendEphemeral(chatID, userID, "❌ Укажите хотя бы один ID пользователя.\nПример: /forzar_salida 123456789", warningTTL)
		return
	}

	var lines []string
	lines = append(lines, "🔐 Принудительное закрытие смен")
	lines = append(lines, "")

	for _, target := range targets {
		if _, err := strconv.ParseInt(target, 10, 64); err != nil {
			lines = append(lines, fmt.Sprintf("❌ %s - не похоже на ID пользователя", target))
			continue
		}

		forced, err := h.attendanceService.ForceClockOut(target, "")
		if err != nil {
			logrus.WithError(err).WithField("target", target).Error("Failed to force clock out")
			lines = append(lines, fmt.Sprintf("❌ %s - ошибка: %s", target, err.Error()))
			continue
		}

		if forced {
			lines = append(lines, fmt.Sprintf("✅ %s - смена закрыта", target))
		} else {
			lines = append(lines, fmt.Sprintf("⚠️ %s - нет открытой смены", target))
		}
	}

	h.sendEphemeral(chatID, userID, strings.Join(lines, "\n"), warningTTL)
	h.deleteLater(chatID, message.MessageID, warningTTL)
}

// showAdmins показывает всех администраторов
func (h *Handler) showAdmins(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := strconv.FormatInt(message.From.ID, 10)

	isAdmin, err := h.userService.IsAdmin(message.From.ID)
	if err != nil {
		h.sendEphemeral(chatID, userID, "❌ Ошибка проверки прав доступа: "+err.Error(), warningTTL)
		return
	}

	if !isAdmin {
		h.sendEphemeral(chatID, userID, "❌ Доступ запрещен. Эта команда только для администраторов.", warningTTL)
		return
	}

	admins, err := h.userService.GetAdmins()
	if err != nil {
		h.sendEphemeral(chatID, userID, "❌ Ошибка получения списка администраторов: "+err.Error(), warningTTL)
		return
	}

	if len(admins) == 0 {
		h.sendEphemeral(chatID, userID, "👑 Список администраторов пуст.", warningTTL)
		return
	}

	var lines []string
	lines = append(lines, "👑 Администраторы:")
	lines = append(lines, "")

	for i, admin := range admins {
		adminInfo := fmt.Sprintf("%d. ", i+1)
		if admin.FirstName != "" {
			adminInfo += admin.FirstName + " "
		}
		if admin.Username != "" {
			adminInfo += fmt.Sprintf("(@%s) ", admin.Username)
		}
		adminInfo += fmt.Sprintf("- ID: %d", admin.ChatID)
		lines = append(lines, adminInfo)
	}

	h.sendEphemeral(chatID, userID, strings.Join(lines, "\n"), replyTTL)
}

// forceClockOutAll закрывает все открытые смены
func (h *Handler) forceClockOutAll(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := strconv.FormatInt(message.From.ID, 10)

	// Проверяем права доступа
	isAdmin, err := h.userService.IsAdmin(message.From.ID)
	if err != nil {
		h.sendEphemeral(chatID, userID, "❌ Ошибка проверки прав доступа: "+err.Error(), warningTTL)
		return
	}

	if !isAdmin {
		logrus.WithField("chat_id", message.From.ID).Warn("Unauthorized force clock out all attempt")
		h.sendEphemeral(chatID, userID, "❌ Доступ запрещен. Эта команда только для администраторов.", warningTTL)
		return
	}

	affected, err := h.attendanceService.ForceClockOutAll()
	if err != nil {
		logrus.WithError(err).Error("Failed to force clock out all users")
		h.sendEphemeral(chatID, userID, "❌ Ошибка закрытия смен: "+err.Error(), warningTTL)
		return
	}

	response := fmt.Sprintf("🔐 Принудительное закрытие смен\n\nЗакрыто смен: %d", affected)

	h.sendEphemeral(chatID, userID, response, warningTTL)
	h.deleteLater(chatID, message.MessageID, warningTTL)
}

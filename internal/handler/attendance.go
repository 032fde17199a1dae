package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"attendance-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// clockIn отмечает начало смены
func (h *Handler) clockIn(chatID int64, userID, username string) {
	record, err := h.attendanceService.ClockIn(userID, username)

	if errors.Is(err, service.ErrAlreadyOnDuty) {
		h.sendEphemeral(chatID, userID, "⚠️ Вы уже на смене.\nНельзя отметить вход дважды подряд.", warningTTL)
		return
	}

	if err != nil {
		logrus.WithError(err).Error("Failed to clock in")
		h.sendEphemeral(chatID, userID, "❌ Ошибка отметки входа: "+err.Error(), warningTTL)
		return
	}

	response := fmt.Sprintf("✅ Вход отмечен!\n\n⏰ Смена начата в %s\n\n💡 Не забудьте отметить выход кнопкой или командой /salida",
		record.Stamp.Format("15:04:05"))

	h.sendEphemeral(chatID, userID, response, replyTTL)
}

// clockOut отмечает конец смены
func (h *Handler) clockOut(chatID int64, userID, username string) {
	_, elapsed, err := h.attendanceService.ClockOut(userID, username)

	if errors.Is(err, service.ErrNotOnDuty) {
		h.sendEphemeral(chatID, userID, "⚠️ Вы не на смене.\nСначала отметьте вход.", warningTTL)
		return
	}

	if err != nil {
		logrus.WithError(err).Error("Failed to clock out")
		h.sendEphemeral(chatID, userID, "❌ Ошибка отметки выхода: "+err.Error(), warningTTL)
		return
	}

	response := fmt.Sprintf("🔴 Выход отмечен!\n\n⏳ Вы были на смене %s", formatDuration(elapsed))

	h.sendEphemeral(chatID, userID, response, replyTTL)
}

// showSummary показывает часы пользователя за период
func (h *Handler) showSummary(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	userID := strconv.FormatInt(message.From.ID, 10)

	days, ok := windowDays(args)
	if !ok {
		h.sendEphemeral(chatID, userID, "❌ Укажите период: dia, semana или mes.\nПример: /resumen semana", warningTTL)
		return
	}

	hours, err := h.reportService.Summary(userID, days)
	if err != nil {
		logrus.WithError(err).Error("Failed to compute summary")
		h.sendEphemeral(chatID, userID, "❌ Ошибка расчета сводки: "+err.Error(), warningTTL)
		return
	}

	response := fmt.Sprintf("📊 Сводка за %d дн.\n\n⏱ Вы отработали примерно %.2f ч.", days, hours)

	h.sendEphemeral(chatID, userID, response, replyTTL)
	h.deleteLater(chatID, message.MessageID, replyTTL)
}

// showRanking показывает рейтинг по отработанным часам
func (h *Handler) showRanking(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	userID := strconv.FormatInt(message.From.ID, 10)

	days, ok := windowDays(args)
	if !ok {
		h.sendEphemeral(chatID, userID, "❌ Укажите период: dia, semana или mes.\nПример: /ranking mes", warningTTL)
		return
	}

	ranking, err := h.reportService.Ranking(days)
	if err != nil {
		logrus.WithError(err).Error("Failed to compute ranking")
		h.sendEphemeral(chatID, userID, "❌ Ошибка расчета рейтинга: "+err.Error(), warningTTL)
		return
	}

	if len(ranking) == 0 {
		h.sendEphemeral(chatID, userID, fmt.Sprintf("🏆 Рейтинг за %d дн.\n\nЗаписей нет", days), replyTTL)
		h.deleteLater(chatID, message.MessageID, replyTTL)
		return
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("🏆 Рейтинг за %d дн.", days))
	lines = append(lines, "")
	for i, entry := range ranking {
		lines = append(lines, fmt.Sprintf("%d. %s - %.2f ч.", i+1, entry.DisplayName, entry.Hours))
	}

	h.sendEphemeral(chatID, userID, strings.Join(lines, "\n"), replyTTL)
	h.deleteLater(chatID, message.MessageID, replyTTL)
}

// showStatus показывает, на смене ли пользователь
func (h *Handler) showStatus(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := strconv.FormatInt(message.From.ID, 10)

	onDuty, err := h.attendanceService.OnDuty(userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to check duty status")
		h.sendEphemeral(chatID, userID, "❌ Ошибка проверки статуса: "+err.Error(), warningTTL)
		return
	}

	if onDuty {
		h.sendEphemeral(chatID, userID, "🟢 Вы сейчас на смене", replyTTL)
	} else {
		h.sendEphemeral(chatID, userID, "🔴 Вы сейчас не на смене", replyTTL)
	}
}

// windowDays сопоставляет период из команды с количеством дней.
// Имена периодов унаследованы от старого бота.
func windowDays(args string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "dia":
		return 1, true
	case "semana":
		return 7, true
	case "mes":
		return 30, true
	}
	return 0, false
}

// formatDuration форматирует продолжительность смены для ответа
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours == 0 {
		return fmt.Sprintf("%d мин.", minutes)
	}
	if minutes == 0 {
		return fmt.Sprintf("%d ч.", hours)
	}
	return fmt.Sprintf("%d ч. %d мин.", hours, minutes)
}

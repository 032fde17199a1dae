package handler

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// replyCache помнит последний эфемерный ответ каждому пользователю.
// Служебный кэш слоя представления: ядро его не читает, записи
// вытесняются таймером удаления сообщения.
type replyCache struct {
	mu      sync.Mutex
	replies map[string]int // user ID -> message ID
}

func newReplyCache() *replyCache {
	return &replyCache{
		replies: make(map[string]int),
	}
}

func (c *replyCache) set(userID string, messageID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[userID] = messageID
}

func (c *replyCache) evict(userID string, messageID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.replies[userID] == messageID {
		delete(c.replies, userID)
	}
}

// sendEphemeral отправляет сообщение и удаляет его через ttl секунд
func (h *Handler) sendEphemeral(chatID int64, userID, text string, ttl int) {
	msg := tgbotapi.NewMessage(chatID, text)

	sent, err := h.client.Bot.Send(msg)
	if err != nil {
		logrus.WithError(err).Error("Failed to send ephemeral message")
		return
	}

	if userID != "" {
		h.replyCache.set(userID, sent.MessageID)
	}

	time.AfterFunc(time.Duration(ttl)*time.Second, func() {
		h.replyCache.evict(userID, sent.MessageID)
		deleteMsg := tgbotapi.NewDeleteMessage(chatID, sent.MessageID)
		if _, err := h.client.Bot.Request(deleteMsg); err != nil {
			logrus.WithError(err).Debug("Failed to delete ephemeral message")
		}
	})
}

// deleteLater удаляет чужое сообщение (например, команду) через ttl секунд
func (h *Handler) deleteLater(chatID int64, messageID int, ttl int) {
	time.AfterFunc(time.Duration(ttl)*time.Second, func() {
		deleteMsg := tgbotapi.NewDeleteMessage(chatID, messageID)
		if _, err := h.client.Bot.Request(deleteMsg); err != nil {
			logrus.WithError(err).Debug("Failed to delete message")
		}
	})
}

package service

import (
	"fmt"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
)

type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// EnsureUser регистрирует пользователя при первом обращении к боту.
// Если пользователь уже есть, обновляет его имя и никнейм.
func (s *UserService) EnsureUser(chatID int64, username, firstName string) (*models.User, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователя: %v", err)
	}

	if user == nil {
		user = &models.User{
			ChatID:    chatID,
			Username:  username,
			FirstName: firstName,
			Role:      models.RoleClient,
		}

		if err := s.repo.Create(user); err != nil {
			return nil, fmt.Errorf("ошибка создания пользователя: %v", err)
		}

		return user, nil
	}

	// Обновляем поля (кроме роли)
	if username != "" {
		user.Username = username
	}
	if firstName != "" {
		user.FirstName = firstName
	}

	if err := s.repo.Update(user); err != nil {
		return nil, fmt.Errorf("ошибка обновления пользователя: %v", err)
	}

	return user, nil
}

// IsAdmin проверяет, является ли пользователь администратором
func (s *UserService) IsAdmin(chatID int64) (bool, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return false, err
	}

	return user != nil && user.IsAdmin(), nil
}

// GetAdmins возвращает всех администраторов
func (s *UserService) GetAdmins() ([]*models.User, error) {
	return s.repo.GetAdmins()
}

// InitializeAdmin инициализирует администратора из конфига
func (s *UserService) InitializeAdmin(adminChatID int64) error {
	if adminChatID == 0 {
		return nil // Админ не задан в конфиге
	}

	// Проверяем, существует ли уже пользователь с таким chatID
	existingUser, err := s.repo.GetByChatID(adminChatID)
	if err != nil {
		return err
	}

	if existingUser != nil {
		// Если пользователь существует, обновляем его роль на админа
		return s.repo.UpdateRole(adminChatID, "admin")
	}

	// Создаем нового администратора
	adminUser := &models.User{
		ChatID:    adminChatID,
		Username:  "admin",
		FirstName: "Администратор",
		Role:      models.RoleAdmin,
	}

	return s.repo.Create(adminUser)
}

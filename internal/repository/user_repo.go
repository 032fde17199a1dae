package repository

import (
	"errors"

	"attendance-bot/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) (*UserRepository, error) {
	// Автомиграция - создает таблицы если их нет
	err := db.AutoMigrate(&models.User{})
	if err != nil {
		return nil, err
	}

	return &UserRepository{db: db}, nil
}

func (r *UserRepository) Create(user *models.User) error {
	// Проверяем, существует ли уже пользователь
	var existingUser models.User
	result := r.db.Where("chat_id = ?", user.ChatID).First(&existingUser)
	if result.Error == nil {
		return errors.New("пользователь уже существует")
	}

	result = r.db.Create(user)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

func (r *UserRepository) GetByChatID(chatID int64) (*models.User, error) {
	var user models.User
	result := r.db.Where("chat_id = ?", chatID).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (r *UserRepository) Update(user *models.User) error {
	// Проверяем существование пользователя
	var existingUser models.User
	result := r.db.Where("chat_id = ?", user.ChatID).First(&existingUser)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return errors.New("пользователь не найден")
	}

	result = r.db.Save(user)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

func (r *UserRepository) UpdateRole(chatID int64, role models.Role) error {
	result := r.db.Model(&models.User{}).
		Where("chat_id = ?", chatID).
		Update("role", role)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errors.New("пользователь не найден")
	}

	return nil
}

func (r *UserRepository) GetAdmins() ([]*models.User, error) {
	var admins []*models.User
	result := r.db.Where("role = ?", models.RoleAdmin).Find(&admins)

	if result.Error != nil {
		return nil, result.Error
	}

	return admins, nil
}

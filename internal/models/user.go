package models

import (
	"time"

	"application-auth/internal/roles"
)

// User — модель пользователя. Владелец данных — подсистема управления
// пользователями; ядро аутентификации читает флаги и роли и не меняет
// ничего, кроме как при регистрации.
type User struct {
	// ID — стабильный целочисленный идентификатор.
	ID int64
	// Email — нормализованный (trim+lowercase) адрес.
	Email string
	// PasswordHash — bcrypt-хэш пароля.
	PasswordHash string
	// Roles — назначенные роли.
	Roles roles.Set
	// EmailConfirmed — адрес подтверждён.
	EmailConfirmed bool
	// IsActive — false означает блокировку аккаунта администратором.
	IsActive bool
	// IsDeleted — мягкое удаление.
	IsDeleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

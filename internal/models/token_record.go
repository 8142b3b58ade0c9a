package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenRecord — запись об одной выпущенной паре access+refresh токенов.
// В БД хранятся только необратимые SHA-256 хэши токенов: утечка таблицы
// не даёт атакующему работающих credentials.
//
// Запись неизменяема, за исключением IsActive, который переходит только
// true -> false (logout, ротация, действия администратора). Физическое
// удаление выполняет только фоновая очистка просроченных записей.
type TokenRecord struct {
	// ID — идентификатор записи, генерируется при вставке.
	ID uuid.UUID
	// UserID — владелец пары.
	UserID int64
	// AccessTokenHash — хэш подписанного access-токена.
	AccessTokenHash string
	// RefreshTokenHash — хэш подписанного refresh-токена.
	RefreshTokenHash string
	// IssuedAt — момент выпуска (UTC).
	IssuedAt time.Time
	// AccessExpiresAt — момент истечения access-токена (UTC).
	AccessExpiresAt time.Time
	// RefreshExpiresAt — момент истечения refresh-токена (UTC),
	// всегда позже AccessExpiresAt.
	RefreshExpiresAt time.Time
	// IsActive — false после отзыва.
	IsActive bool
}

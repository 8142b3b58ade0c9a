// service содержит бизнес-логику ядра аутентификации: регистрацию и вход
// пользователей, выпуск/ротацию/отзыв пар токенов и проверку access-токенов
// на каждом запросе.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Ошибки возвращаются и далее маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"application-auth/internal/config"
	"application-auth/internal/storage"
	"application-auth/internal/token"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна, пользователь не найден
	// или у него нет требуемой операцией роли. Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotConfirmed — email пользователя не подтверждён. Транспорт: HTTP 403.
	ErrEmailNotConfirmed = errors.New("email is not confirmed")

	// ErrAccountBlocked — аккаунт заблокирован администратором. Транспорт: HTTP 403.
	ErrAccountBlocked = errors.New("account is blocked")

	// ErrAccountDeleted — аккаунт мягко удалён. Транспорт: HTTP 403.
	ErrAccountDeleted = errors.New("account is deleted")

	// ErrEmailTaken — email уже занят подтверждённым пользователем.
	// Транспорт: HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidEmail — email имеет некорректный формат. Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политике сложности.
	// Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. Транспорт: HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrInvalidToken — refresh-токен отсутствует в хранилище, просрочен или
	// уже был ротирован. Транспорт: HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrForbidden — роли владельца refresh-токена не пересекаются с
	// разрешёнными для операции. Транспорт: HTTP 403.
	ErrForbidden = errors.New("access denied")

	// ErrAuthenticationFailed — обобщённый отказ проверки access-токена.
	// Причина (формат/подпись/просрочка/отзыв/сбой хранилища) намеренно
	// не раскрывается вызывающему. Транспорт: HTTP 401.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUserNotFound — пользователь не найден (logout). Транспорт: HTTP 400.
	ErrUserNotFound = errors.New("user not found")
)

// Service реализует операции ядра аутентификации.
type Service struct {
	storage storage.Storage
	crypto  *token.Crypto
	cfg     config.AuthConfig
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, crypto *token.Crypto, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		crypto:  crypto,
		cfg:     cfg,
	}
}

package storage

import (
	"context"
	"errors"
	"time"

	"application-auth/internal/models"
	"application-auth/internal/roles"

	"github.com/google/uuid"
)

var (
	// ErrNotFound — запись не найдена (пользователь/токен).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/хэш токена).
	ErrAlreadyExists = errors.New("already exists")
	// ErrRevoked — запись о токене существует, но уже деактивирована.
	ErrRevoked = errors.New("revoked")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт нового пользователя; ID присваивает БД,
	// значение записывается обратно в user.ID.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по нормализованному email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id int64) (*models.User, error)
	// AssignRole добавляет пользователю роль (идемпотентно).
	AssignRole(ctx context.Context, userID int64, role roles.Role) error
}

// TokenStorage выполняет операции над записями выпущенных пар токенов.
//
// Все выборки фильтруют is_active = TRUE; выборка по refresh-хэшу
// дополнительно требует refresh_expires_at > now (ленивое истечение).
type TokenStorage interface {
	// SaveTokenRecord сохраняет новую запись.
	SaveTokenRecord(ctx context.Context, rec *models.TokenRecord) error
	// ActiveByAccessHash находит активную запись по хэшу access-токена.
	// Вызывается на каждом аутентифицированном запросе — путь должен быть
	// покрыт индексом.
	ActiveByAccessHash(ctx context.Context, hash string) (*models.TokenRecord, error)
	// ActiveByRefreshHash находит активную непросроченную запись по хэшу
	// refresh-токена.
	ActiveByRefreshHash(ctx context.Context, hash string, now time.Time) (*models.TokenRecord, error)
	// Deactivate переводит запись is_active -> FALSE.
	// Возвращает (false, nil), если запись уже была неактивна.
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
	// DeactivateAllByUser деактивирует все записи пользователя (logout).
	DeactivateAllByUser(ctx context.Context, userID int64) error
	// RotateTokenRecord атомарно (в одной транзакции) деактивирует старую
	// запись и вставляет новую. Если старая запись уже неактивна —
	// ErrRevoked; если отсутствует — ErrNotFound. Гарантирует, что из двух
	// конкурентных ротаций одного refresh-токена выигрывает ровно одна.
	RotateTokenRecord(ctx context.Context, oldID uuid.UUID, rec *models.TokenRecord) error
	// DeleteExpired удаляет записи с истёкшим refresh-сроком.
	// Оптимизация для фоновой очистки; корректность от неё не зависит.
	DeleteExpired(ctx context.Context, now time.Time) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	TokenStorage
	Close()
}

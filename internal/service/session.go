package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"application-auth/internal/metrics"
	"application-auth/internal/models"
	"application-auth/internal/pkg/log"
	"application-auth/internal/pkg/redact"
	"application-auth/internal/roles"
	"application-auth/internal/storage"
	"application-auth/internal/token"
)

// Register регистрирует нового пользователя и возвращает нормализованный email.
//
// Поведение:
//   - существующий подтверждённый пользователь с этим email — ErrEmailTaken;
//   - существующий неподтверждённый — регистрация считается успешной,
//     данные не меняются (placeholder переиспользуется);
//   - иначе создаётся пользователь с подтверждённым email и базовой ролью.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	const op = "service.session.Register"

	normEmail, err := normalizeEmail(email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	existing, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		if existing.EmailConfirmed {
			return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		// Неподтверждённый placeholder: повторная регистрация не создаёт
		// дубликат и не трогает существующую запись.
		return existing.Email, nil
	}

	if err := validatePassword(password); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:          normEmail,
		PasswordHash:   hashedPassword,
		Roles:          roles.NewSet(),
		EmailConfirmed: true,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.AssignRole(ctx, user.ID, roles.User); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_registered",
		slog.String("op", op),
		slog.Int64("user_id", user.ID),
		slog.String("email", redact.Email(user.Email)),
	)

	return user.Email, nil
}

// Login выполняет вход по email+пароль и выпускает пару токенов.
// Требует базовую роль User.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.session.Login"

	pair, user, err := s.login(ctx, email, password, false)
	if err != nil {
		metrics.Logins.WithLabelValues("login", loginResult(err)).Inc()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.Logins.WithLabelValues("login", "ok").Inc()

	return pair, user, nil
}

// AdminLogin — вход для административных пользователей: вместо базовой
// роли требуется Admin или SuperAdmin. Таксономия отказов та же, что у Login.
func (s *Service) AdminLogin(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.session.AdminLogin"

	pair, user, err := s.login(ctx, email, password, true)
	if err != nil {
		metrics.Logins.WithLabelValues("admin_login", loginResult(err)).Inc()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.Logins.WithLabelValues("admin_login", "ok").Inc()

	return pair, user, nil
}

// login — общий протокол Login/AdminLogin; elevated переключает требуемую роль.
func (s *Service) login(ctx context.Context, email, password string, elevated bool) (*models.TokenPair, *models.User, error) {
	lg := log.From(ctx)

	normEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if len(password) == 0 {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}

		return nil, nil, err
	}

	// Роль проверяется вместе с паролем: отсутствие требуемой роли не
	// отличимо снаружи от неверного пароля.
	hasRole := user.Roles.Has(roles.User)
	if elevated {
		hasRole = user.Roles.HasAny(roles.Admin, roles.SuperAdmin)
	}

	if !checkPassword(user.PasswordHash, password) || !hasRole {
		lg.Warn("login_denied",
			slog.String("email", redact.Email(normEmail)),
		)
		return nil, nil, ErrInvalidCredentials
	}

	// Флаги аккаунта, в порядке приоритета.
	switch {
	case !user.EmailConfirmed:
		return nil, nil, ErrEmailNotConfirmed
	case !user.IsActive:
		return nil, nil, ErrAccountBlocked
	case user.IsDeleted:
		return nil, nil, ErrAccountDeleted
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

// Refresh обменивает refresh-токен на новую пару (ротация).
//
// Токен ищется по хэшу среди активных непросроченных записей; криптографическая
// проверка не нужна — значение, которого нет в хранилище, недействительно
// независимо от подписи. allowed задаёт роли, которым разрешена операция.
func (s *Service) Refresh(ctx context.Context, refreshToken string, allowed roles.Set) (*models.TokenPair, int64, error) {
	const op = "service.session.Refresh"

	lg := log.From(ctx)

	rec, err := s.storage.ActiveByRefreshHash(ctx, token.Hash(refreshToken), time.Now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_lookup_not_found", slog.String("op", op))
			return nil, 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		lg.Error("refresh_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	if !user.Roles.Intersects(allowed) {
		lg.Warn("refresh_role_denied",
			slog.String("op", op),
			slog.Int64("user_id", user.ID),
		)
		return nil, 0, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	pair, err := s.rotateRefresh(ctx, rec.ID, user)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user.ID, nil
}

// Logout отзывает все выпущенные токены пользователя: каждая активная запись
// деактивируется, включая пары, выданные с других устройств.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	const op = "service.session.Logout"

	if _, err := s.storage.UserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeactivateAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_logged_out",
		slog.String("op", op),
		slog.Int64("user_id", userID),
	)

	return nil
}

// loginResult — лейбл метрики для исхода входа.
func loginResult(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrEmailNotConfirmed),
		errors.Is(err, ErrAccountBlocked),
		errors.Is(err, ErrAccountDeleted):
		return "denied"
	default:
		return "error"
	}
}

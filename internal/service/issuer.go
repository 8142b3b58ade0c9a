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
	"application-auth/internal/storage"
	"application-auth/internal/token"

	"github.com/google/uuid"
)

// issuePair выпускает пару access+refresh токенов для пользователя и
// сохраняет запись с хэшами в хранилище. Единственное место, где «сырые»
// токены существуют на сервере, — возвращаемое значение.
func (s *Service) issuePair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service.issuer.issuePair"

	pair, rec, err := s.mintPair(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.SaveTokenRecord(ctx, rec); err != nil {
		log.From(ctx).Error("token_record_save_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

// rotateRefresh атомарно заменяет запись oldID новой парой: деактивация
// старой и вставка новой выполняются в одной транзакции хранилища, поэтому
// окна, в котором действуют оба refresh-токена, не существует. Из двух
// конкурентных ротаций одной записи выигрывает ровно одна; проигравшая
// получает ErrInvalidToken.
func (s *Service) rotateRefresh(ctx context.Context, oldID uuid.UUID, user *models.User) (*models.TokenPair, error) {
	const op = "service.issuer.rotateRefresh"

	lg := log.From(ctx)

	pair, rec, err := s.mintPair(user)
	if err != nil {
		metrics.Rotations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.RotateTokenRecord(ctx, oldID, rec); err != nil {
		if errors.Is(err, storage.ErrRevoked) || errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_rotation_lost",
				slog.String("op", op),
				slog.Int64("user_id", user.ID),
			)
			metrics.Rotations.WithLabelValues("invalid").Inc()
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		lg.Error("refresh_rotation_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		metrics.Rotations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.Rotations.WithLabelValues("ok").Inc()

	return pair, nil
}

// mintPair подписывает обе части пары и строит запись для хранилища.
// БД не трогает.
func (s *Service) mintPair(user *models.User) (*models.TokenPair, *models.TokenRecord, error) {
	now := time.Now().UTC()

	access, err := s.crypto.Sign(user.ID, user.Roles, false, now, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, nil, err
	}

	refresh, err := s.crypto.Sign(user.ID, user.Roles, true, now, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, nil, err
	}

	rec := &models.TokenRecord{
		ID:               uuid.New(),
		UserID:           user.ID,
		AccessTokenHash:  token.Hash(access),
		RefreshTokenHash: token.Hash(refresh),
		IssuedAt:         now,
		AccessExpiresAt:  now.Add(s.cfg.AccessTokenTTL),
		RefreshExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
		IsActive:         true,
	}

	pair := &models.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: rec.AccessExpiresAt,
	}

	return pair, rec, nil
}

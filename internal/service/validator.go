package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"application-auth/internal/metrics"
	"application-auth/internal/models"
	"application-auth/internal/pkg/log"
	"application-auth/internal/storage"
	"application-auth/internal/token"
)

// ValidateAccessToken проверяет access-токен, предъявленный как bearer,
// и возвращает субъект запроса.
//
// Конечный автомат (терминальные состояния — принят/отклонён):
//  1. криптографический разбор (подпись, издатель/аудитория, срок) —
//     невалидный или просроченный токен отклоняется;
//  2. refresh-токен в роли bearer отклоняется всегда: им можно только
//     обменяться через Refresh;
//  3. хэш «сырого» токена ищется среди активных записей хранилища —
//     отсутствие означает logout или вытеснение ротацией;
//  4. найден — принят; наружу уходят userID и роли из клеймов.
//
// Любой сбой хранилища трактуется как отказ (fail closed): причина пишется
// в лог, вызывающий получает обобщённый ErrAuthenticationFailed, как и при
// любой другой причине отказа.
func (s *Service) ValidateAccessToken(ctx context.Context, raw string) (*models.Principal, error) {
	const op = "service.validator.ValidateAccessToken"

	lg := log.From(ctx)

	claims, err := s.crypto.Parse(raw)
	if err != nil {
		metrics.TokenValidations.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrAuthenticationFailed)
	}

	if claims.IsRefresh {
		lg.Warn("refresh_token_presented_as_bearer",
			slog.String("op", op),
			slog.Int64("user_id", claims.UserID),
		)
		metrics.TokenValidations.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrAuthenticationFailed)
	}

	rec, err := s.storage.ActiveByAccessHash(ctx, token.Hash(raw))
	if err != nil {
		// ErrNotFound — отзыв или ротация; прочее — сбой хранилища.
		// Наружу в обоих случаях уходит один и тот же отказ.
		lg.Warn("access_token_rejected",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		metrics.TokenValidations.WithLabelValues(validationResult(err)).Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrAuthenticationFailed)
	}

	if rec.UserID != claims.UserID {
		lg.Error("access_token_owner_mismatch",
			slog.String("op", op),
			slog.Int64("claims_user_id", claims.UserID),
			slog.Int64("record_user_id", rec.UserID),
		)
		metrics.TokenValidations.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrAuthenticationFailed)
	}

	metrics.TokenValidations.WithLabelValues("accepted").Inc()

	return &models.Principal{
		UserID: claims.UserID,
		Roles:  claims.Roles,
	}, nil
}

// validationResult — лейбл метрики: отказ по данным или сбой хранилища.
func validationResult(err error) string {
	if err == nil {
		return "accepted"
	}
	if errors.Is(err, storage.ErrNotFound) {
		return "rejected"
	}

	return "failed"
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"application-auth/internal/pkg/log"
	"application-auth/internal/service"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeServiceError маппит ошибки сервиса на HTTP-статусы. Неопознанная
// ошибка — сбой: наружу уходит нейтральный 500, причина остаётся в логе.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrEmptyPassword),
		errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusBadRequest, unwrapMsg(err))

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, unwrapMsg(err))

	case errors.Is(err, service.ErrEmailNotConfirmed),
		errors.Is(err, service.ErrAccountBlocked),
		errors.Is(err, service.ErrAccountDeleted),
		errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, unwrapMsg(err))

	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, unwrapMsg(err))

	default:
		log.From(ctx).Error("internal_error", log.Err(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// unwrapMsg возвращает текст терминальной (sentinel) ошибки без op-префиксов.
func unwrapMsg(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

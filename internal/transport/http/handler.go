// http реализует HTTP-транспорт сервиса: JSON-обработчики операций сессии
// и маппинг ошибок сервиса на статусы. Вся бизнес-логика живёт в service;
// транспорт только декодирует запрос, вызывает операцию и кодирует ответ.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"application-auth/internal/middleware"
	"application-auth/internal/models"
	"application-auth/internal/roles"
)

// Session — операции сессии, нужные транспорту.
type Session interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error)
	AdminLogin(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error)
	Refresh(ctx context.Context, refreshToken string, allowed roles.Set) (*models.TokenPair, int64, error)
	Logout(ctx context.Context, userID int64) error
}

// Auth — полная поверхность сервиса: операции сессии плюс проверка
// access-токена для middleware.
type Auth interface {
	Session
	middleware.TokenValidator
}

// Handler — HTTP-обработчики операций сессии.
type Handler struct {
	svc Session
}

// NewHandler создаёт Handler поверх сервиса.
func NewHandler(svc Session) *Handler {
	return &Handler{svc: svc}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID             int64    `json:"id"`
	Email          string   `json:"email"`
	Roles          []string `json:"roles"`
	EmailConfirmed bool     `json:"email_confirmed"`
	IsActive       bool     `json:"is_active"`
}

type pairResponse struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

type loginResponse struct {
	User userResponse `json:"user"`
	pairResponse
}

type registerResponse struct {
	Email string `json:"email"`
}

type meResponse struct {
	UserID int64    `json:"user_id"`
	Roles  []string `json:"roles"`
}

// Register обрабатывает POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{Email: email})
}

// Login обрабатывает POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.svc.Login)
}

// AdminLogin обрабатывает POST /auth/admin/login.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.svc.AdminLogin)
}

func (h *Handler) login(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error),
) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, user, err := op(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		User: userResponse{
			ID:             user.ID,
			Email:          user.Email,
			Roles:          user.Roles.Names(),
			EmailConfirmed: user.EmailConfirmed,
			IsActive:       user.IsActive,
		},
		pairResponse: pairResponse{
			AccessToken:     pair.AccessToken,
			RefreshToken:    pair.RefreshToken,
			AccessExpiresAt: pair.AccessExpiresAt,
		},
	})
}

// Refresh обрабатывает POST /auth/refresh: обмен refresh-токена на новую пару.
// Операция доступна любой роли; ограничение ролей передаётся сервису явно.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, _, err := h.svc.Refresh(r.Context(), req.RefreshToken,
		roles.NewSet(roles.User, roles.Admin, roles.SuperAdmin))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, pairResponse{
		AccessToken:     pair.AccessToken,
		RefreshToken:    pair.RefreshToken,
		AccessExpiresAt: pair.AccessExpiresAt,
	})
}

// Logout обрабатывает POST /auth/logout: отзывает все токены владельца
// bearer-токена. Требует Authenticate в цепочке.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	if err := h.svc.Logout(r.Context(), principal.UserID); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me обрабатывает GET /auth/me: возвращает субъект текущего запроса.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		UserID: principal.UserID,
		Roles:  principal.Roles.Names(),
	})
}

package authhandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrleave/internal/domain/auth"
	"hrleave/internal/transport/http/api"
	"hrleave/internal/transport/http/middleware"
)

type Handler struct {
	Store    *auth.Store
	Secret   string
	TokenTTL time.Duration
}

func New(store *auth.Store, secret string, ttl time.Duration) *Handler {
	return &Handler{Store: store, Secret: secret, TokenTTL: ttl}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Get("/me", h.me)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	Role      string `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}

	user, err := h.Store.FindUserByEmail(r.Context(), in.Email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}
	if auth.CheckPassword(user.PasswordHash, in.Password) != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}

	token, err := auth.IssueToken(h.Secret, user.ID, user.EmployeeID, user.RoleName, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "could not issue token", reqID)
		return
	}

	api.Success(w, loginResponse{
		Token:     token,
		ExpiresIn: int64(h.TokenTTL.Seconds()),
		Role:      user.RoleName,
	}, reqID)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	api.Success(w, user, reqID)
}

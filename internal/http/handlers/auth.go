package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hongminglow/usermanager-be/internal/directory"
	"github.com/hongminglow/usermanager-be/internal/http/respond"
	"github.com/hongminglow/usermanager-be/internal/models"
	"github.com/hongminglow/usermanager-be/internal/models/dto"
)

// Authenticator verifies credentials and issues tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (models.AuthToken, error)
}

// AuthHandler owns the login endpoint.
type AuthHandler struct {
	auth Authenticator
	log  *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth Authenticator, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /authenticate", h.handleAuthenticate)
}

func (h *AuthHandler) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if directory.KindOf(err) == directory.KindAuthentication {
			respond.Error(w, http.StatusUnauthorized, directory.ErrInvalidCredentials.Message)
			return
		}
		writeServiceError(w, r, h.log, err)
		return
	}
	respond.Raw(w, http.StatusOK, dto.LoginResponse{
		Token:    token.Token,
		Email:    token.Email,
		FullName: token.FullName,
	})
}

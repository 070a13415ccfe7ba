package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hongminglow/usermanager-be/internal/http/respond"
	"github.com/hongminglow/usermanager-be/internal/middleware"
	"github.com/hongminglow/usermanager-be/internal/models"
	"github.com/hongminglow/usermanager-be/internal/models/dto"
)

// Directory is the user and reference-data surface served over HTTP.
type Directory interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	Create(ctx context.Context, req dto.CreateUserRequest) (models.User, error)
	Update(ctx context.Context, id int64, req dto.UpdateUserRequest) (models.User, error)
	Delete(ctx context.Context, id int64) error
	IdentificationTypes(ctx context.Context) ([]models.IdentificationType, error)
}

// UserHandler owns the /users and /identification-types endpoints.
type UserHandler struct {
	dir Directory
	log *slog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(dir Directory, log *slog.Logger) *UserHandler {
	return &UserHandler{dir: dir, log: log}
}

// Register attaches the routes to mux behind guard.
func (h *UserHandler) Register(mux *http.ServeMux, guard middleware.Guard) {
	mux.Handle("GET /users", guard(http.HandlerFunc(h.handleList)))
	mux.Handle("POST /users", guard(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /users/{id}", guard(http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT /users/{id}", guard(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /users/{id}", guard(http.HandlerFunc(h.handleDelete)))
	mux.Handle("GET /identification-types", guard(http.HandlerFunc(h.handleIdentificationTypes)))
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.dir.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", users)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.dir.GetByID(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "", user)
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.dir.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	w.Header().Set("Location", "/users/"+strconv.FormatInt(created.ID, 10))
	respond.JSON(w, http.StatusCreated, "User created.", created)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.dir.Update(r.Context(), pathID(r), req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "User updated.", updated)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.dir.Delete(r.Context(), pathID(r)); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "User deleted.", nil)
}

func (h *UserHandler) handleIdentificationTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.dir.IdentificationTypes(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	respond.Raw(w, http.StatusOK, types)
}

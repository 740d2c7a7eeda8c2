package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/lkral/courier/internal/service"
)

// AccountHandler handles account management requests.
type AccountHandler struct {
	userService *service.UserService
	logger      zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(userService *service.UserService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		userService: userService,
		logger:      logger.With().Str("handler", "account").Logger(),
	}
}

// RegisterRoutes registers account routes.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/accounts", h.handleCreate)
	r.Get("/api/accounts", h.handleList)
	r.Put("/api/accounts/{username}/password", h.handleEditPassword)
	r.Delete("/api/accounts/{username}", h.handleDelete)
}

type createAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (h *AccountHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.userService.Create(r.Context(), service.CreateAccountInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, accountResponse{ID: user.ID, Username: user.Username})
}

type editPasswordRequest struct {
	Password string `json:"password"`
}

func (h *AccountHandler) handleEditPassword(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req editPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.userService.Edit(r.Context(), username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{ID: user.ID, Username: user.Username})
}

func (h *AccountHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	username, password, ok := basicAuth(w, r)
	if !ok {
		return
	}

	// The credentials must belong to the account being deleted; one
	// account cannot remove another.
	if chi.URLParam(r, "username") != username {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "cannot delete another account"})
		return
	}

	if err := h.userService.Delete(r.Context(), username, password); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	accounts := make([]accountResponse, 0, len(users))
	for _, u := range users {
		accounts = append(accounts, accountResponse{ID: u.ID, Username: u.Username})
	}

	writeJSON(w, http.StatusOK, accounts)
}

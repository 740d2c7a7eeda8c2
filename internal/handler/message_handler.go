package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/lkral/courier/internal/service"
)

// MessageHandler handles message requests.
type MessageHandler struct {
	messageService *service.MessageService
	logger         zerolog.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messageService *service.MessageService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		logger:         logger.With().Str("handler", "message").Logger(),
	}
}

// RegisterRoutes registers message routes. Both routes are gated: the
// Basic Auth credentials identify the acting user.
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/messages", h.handleSend)
	r.Get("/api/messages", h.handleListInbox)
}

type sendMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type sendMessageResponse struct {
	ID int64 `json:"id"`
}

func (h *MessageHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	username, password, ok := basicAuth(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.messageService.Send(r.Context(), service.SendInput{
		Username: username,
		Password: password,
		To:       req.To,
		Text:     req.Text,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, sendMessageResponse{ID: msg.ID})
}

func (h *MessageHandler) handleListInbox(w http.ResponseWriter, r *http.Request) {
	username, password, ok := basicAuth(w, r)
	if !ok {
		return
	}

	inbox, err := h.messageService.ListInbox(r.Context(), username, password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, inbox)
}

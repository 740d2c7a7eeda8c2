package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lkral/courier/internal/domain"
	"github.com/lkral/courier/internal/repository"
)

// MessageService handles sending and reading messages.
type MessageService struct {
	userRepo repository.UserRepository
	msgRepo  repository.MessageRepository
	logger   zerolog.Logger
}

// NewMessageService creates a new MessageService.
func NewMessageService(userRepo repository.UserRepository, msgRepo repository.MessageRepository, logger zerolog.Logger) *MessageService {
	return &MessageService{
		userRepo: userRepo,
		msgRepo:  msgRepo,
		logger:   logger.With().Str("service", "message").Logger(),
	}
}

// SendInput contains the data needed to send a message.
type SendInput struct {
	Username string // acting user
	Password string
	To       string // recipient username
	Text     string
}

// Send authenticates the sender, resolves the recipient and persists the
// message. Nothing is written before the gate passes.
func (s *MessageService) Send(ctx context.Context, input SendInput) (*domain.Message, error) {
	sender, err := authenticate(ctx, s.userRepo, input.Username, input.Password)
	if err != nil {
		s.logger.Debug().Str("username", input.Username).Msg("send rejected by gate")
		return nil, err
	}

	receiver, err := s.userRepo.GetByUsername(ctx, input.To)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, fmt.Errorf("%w: recipient %q", domain.ErrUserNotFound, input.To)
		}
		return nil, err
	}

	msg := domain.NewMessage(sender.ID, receiver.ID, input.Text)
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		s.logger.Error().Err(err).
			Str("from", input.Username).
			Str("to", input.To).
			Msg("failed to persist message")
		return nil, err
	}

	s.logger.Info().
		Int64("message_id", msg.ID).
		Str("from", input.Username).
		Str("to", input.To).
		Msg("message sent")

	return msg, nil
}

// InboxMessage is a message as presented to its recipient, with the
// sender resolved to a username.
type InboxMessage struct {
	From string    `json:"from"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// ListInbox authenticates the user and returns every message addressed
// to them, with sender usernames resolved.
func (s *MessageService) ListInbox(ctx context.Context, username, password string) ([]InboxMessage, error) {
	user, err := authenticate(ctx, s.userRepo, username, password)
	if err != nil {
		s.logger.Debug().Str("username", username).Msg("inbox listing rejected by gate")
		return nil, err
	}

	msgs, err := s.msgRepo.ListByRecipient(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to list messages")
		return nil, err
	}

	inbox := make([]InboxMessage, 0, len(msgs))
	for _, msg := range msgs {
		from := "unknown"
		sender, err := s.userRepo.GetByID(ctx, msg.FromID)
		if err == nil {
			from = sender.Username
		} else if err != domain.ErrUserNotFound {
			return nil, err
		}

		inbox = append(inbox, InboxMessage{
			From: from,
			Text: msg.Text,
			Date: msg.CreationDate,
		})
	}

	return inbox, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/castrogabe/antiquepox/pkg/errors"

	"github.com/castrogabe/antiquepox/internal/domain"
	"github.com/castrogabe/antiquepox/internal/repository"
)

// MessageService implements the business logic for contact-form messages.
type MessageService struct {
	messageRepo repository.MessageRepository
	logger      *slog.Logger
}

// NewMessageService creates a new message service.
func NewMessageService(messageRepo repository.MessageRepository, logger *slog.Logger) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// SubmitMessageInput holds the parameters for a contact-form submission.
type SubmitMessageInput struct {
	FullName string
	Email    string
	Subject  string
	Body     string
}

// SubmitMessage records a contact-form submission.
func (s *MessageService) SubmitMessage(ctx context.Context, input *SubmitMessageInput) (*domain.Message, error) {
	if input.FullName == "" {
		return nil, apperrors.InvalidInput("full name is required")
	}
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Body == "" {
		return nil, apperrors.InvalidInput("message body is required")
	}

	msg := &domain.Message{
		ID:        uuid.New().String(),
		FullName:  input.FullName,
		Email:     input.Email,
		Subject:   input.Subject,
		Body:      input.Body,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.logger.InfoContext(ctx, "contact message received",
		slog.String("message_id", msg.ID),
		slog.String("email", msg.Email),
	)

	return msg, nil
}

// ListMessages returns a page of contact messages, newest first.
func (s *MessageService) ListMessages(ctx context.Context, page, perPage int) ([]domain.Message, int, error) {
	messages, total, err := s.messageRepo.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	return messages, total, nil
}

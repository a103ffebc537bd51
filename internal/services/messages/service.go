package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zenlit/backend/internal/domain/model"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrRateLimited = errors.New("rate limited")
)

const maxBodyLength = 2000

type MessageStore interface {
	Insert(ctx context.Context, msg model.Message) error
	Conversation(ctx context.Context, a, b uuid.UUID, limit int) ([]model.Message, error)
	MarkRead(ctx context.Context, readerID, peerID uuid.UUID) (int64, error)
}

type SendLimiter interface {
	AllowMessage(ctx context.Context, userID uuid.UUID) (int64, bool, error)
}

type Service struct {
	store    MessageStore
	limiter  SendLimiter
	pageSize int
	now      func() time.Time
}

// RateLimitError carries the wait hint alongside the sentinel.
type RateLimitError struct {
	RetryAfterSec int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %ds", e.RetryAfterSec)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

func NewService(store MessageStore, limiter SendLimiter, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 50
	}

	return &Service{
		store:    store,
		limiter:  limiter,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (s *Service) Send(ctx context.Context, senderID, receiverID uuid.UUID, body string) (model.Message, error) {
	if s.store == nil {
		return model.Message{}, fmt.Errorf("message store is nil")
	}
	if senderID == uuid.Nil || receiverID == uuid.Nil || senderID == receiverID {
		return model.Message{}, fmt.Errorf("invalid participants: %w", ErrValidation)
	}

	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxBodyLength {
		return model.Message{}, fmt.Errorf("body must be 1..%d characters: %w", maxBodyLength, ErrValidation)
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowMessage(ctx, senderID)
		if err != nil {
			return model.Message{}, fmt.Errorf("rate limiter: %w", err)
		}
		if !allowed {
			return model.Message{}, &RateLimitError{RetryAfterSec: retryAfter}
		}
	}

	msg := model.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.Insert(ctx, msg); err != nil {
		return model.Message{}, fmt.Errorf("insert message: %w", err)
	}

	return msg, nil
}

func (s *Service) Conversation(ctx context.Context, userID, peerID uuid.UUID) ([]model.Message, error) {
	if s.store == nil {
		return nil, fmt.Errorf("message store is nil")
	}
	if userID == uuid.Nil || peerID == uuid.Nil || userID == peerID {
		return nil, fmt.Errorf("invalid participants: %w", ErrValidation)
	}

	msgs, err := s.store.Conversation(ctx, userID, peerID, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	return msgs, nil
}

// MarkRead flags everything the peer sent to the reader as read and returns
// how many messages changed.
func (s *Service) MarkRead(ctx context.Context, readerID, peerID uuid.UUID) (int64, error) {
	if s.store == nil {
		return 0, fmt.Errorf("message store is nil")
	}
	if readerID == uuid.Nil || peerID == uuid.Nil || readerID == peerID {
		return 0, fmt.Errorf("invalid participants: %w", ErrValidation)
	}

	updated, err := s.store.MarkRead(ctx, readerID, peerID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return updated, nil
}

package messages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/zenlit/backend/internal/domain/model"
)

type fakeMessageStore struct {
	messages []model.Message
	readArgs [][2]uuid.UUID
}

func (s *fakeMessageStore) Insert(_ context.Context, msg model.Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

func (s *fakeMessageStore) Conversation(_ context.Context, a, b uuid.UUID, _ int) ([]model.Message, error) {
	var out []model.Message
	for _, m := range s.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) MarkRead(_ context.Context, readerID, peerID uuid.UUID) (int64, error) {
	s.readArgs = append(s.readArgs, [2]uuid.UUID{readerID, peerID})
	var n int64
	for _, m := range s.messages {
		if m.SenderID == peerID && m.ReceiverID == readerID && m.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

type stubLimiter struct {
	allowed    bool
	retryAfter int64
}

func (l *stubLimiter) AllowMessage(_ context.Context, _ uuid.UUID) (int64, bool, error) {
	if l.allowed {
		return 0, true, nil
	}
	return l.retryAfter, false, nil
}

func TestSendStoresValidatedMessage(t *testing.T) {
	store := &fakeMessageStore{}
	svc := NewService(store, &stubLimiter{allowed: true}, 50)

	sender := uuid.New()
	receiver := uuid.New()

	msg, err := svc.Send(context.Background(), sender, receiver, "  hello there  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Body != "hello there" {
		t.Fatalf("body not trimmed: %q", msg.Body)
	}
	if len(store.messages) != 1 {
		t.Fatalf("message was not stored")
	}
}

func TestSendValidation(t *testing.T) {
	svc := NewService(&fakeMessageStore{}, &stubLimiter{allowed: true}, 50)
	sender := uuid.New()
	receiver := uuid.New()

	cases := []struct {
		name     string
		sender   uuid.UUID
		receiver uuid.UUID
		body     string
	}{
		{name: "empty body", sender: sender, receiver: receiver, body: "   "},
		{name: "oversized body", sender: sender, receiver: receiver, body: strings.Repeat("x", maxBodyLength+1)},
		{name: "self message", sender: sender, receiver: sender, body: "hi"},
		{name: "nil receiver", sender: sender, receiver: uuid.Nil, body: "hi"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Send(context.Background(), tc.sender, tc.receiver, tc.body); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSendRateLimited(t *testing.T) {
	svc := NewService(&fakeMessageStore{}, &stubLimiter{allowed: false, retryAfter: 7}, 50)

	_, err := svc.Send(context.Background(), uuid.New(), uuid.New(), "hi")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}

	var rl *RateLimitError
	if !errors.As(err, &rl) || rl.RetryAfterSec != 7 {
		t.Fatalf("retry hint lost: %v", err)
	}
}

func TestMarkRead(t *testing.T) {
	store := &fakeMessageStore{}
	svc := NewService(store, &stubLimiter{allowed: true}, 50)

	reader := uuid.New()
	peer := uuid.New()

	if _, err := svc.Send(context.Background(), peer, reader, "one"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(context.Background(), peer, reader, "two"); err != nil {
		t.Fatalf("send: %v", err)
	}

	updated, err := svc.MarkRead(context.Background(), reader, peer)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 messages marked, got %d", updated)
	}
	if len(store.readArgs) != 1 || store.readArgs[0] != [2]uuid.UUID{reader, peer} {
		t.Fatalf("mark read called with wrong participants: %v", store.readArgs)
	}
}

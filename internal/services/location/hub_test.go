package location

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHubHandsOutOneManagerPerUser(t *testing.T) {
	hub := NewHub(&fakeStore{}, newFakeIntents(), nil, time.Hour)
	userID := uuid.New()

	if err := hub.Report(userID, Position{Latitude: 12.9716, Longitude: 77.5946}); err != nil {
		t.Fatalf("report: %v", err)
	}

	first, err := hub.ManagerFor(context.Background(), userID)
	if err != nil {
		t.Fatalf("first manager: %v", err)
	}
	second, err := hub.ManagerFor(context.Background(), userID)
	if err != nil {
		t.Fatalf("second manager: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same manager instance on repeat access")
	}
}

func TestHubDropClearsIntentWithoutLiveManager(t *testing.T) {
	intents := newFakeIntents()
	userID := uuid.New()
	intents.values[userID] = true

	hub := NewHub(&fakeStore{}, intents, nil, time.Hour)
	if err := hub.Drop(context.Background(), userID); err != nil {
		t.Fatalf("drop: %v", err)
	}

	if got, _ := intents.Get(context.Background(), userID); got {
		t.Fatalf("drop without a live manager must still clear the persisted intent")
	}
}

func TestHubDropTearsDownLiveManager(t *testing.T) {
	store := &fakeStore{}
	intents := newFakeIntents()
	hub := NewHub(store, intents, nil, time.Hour)
	userID := uuid.New()

	if err := hub.Report(userID, Position{Latitude: 12.9716, Longitude: 77.5946}); err != nil {
		t.Fatalf("report: %v", err)
	}
	mgr, err := hub.ManagerFor(context.Background(), userID)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if err := mgr.TurnOn(context.Background()); err != nil {
		t.Fatalf("turn on: %v", err)
	}

	if err := hub.Drop(context.Background(), userID); err != nil {
		t.Fatalf("drop: %v", err)
	}

	if mgr.Enabled() {
		t.Fatalf("dropped manager must be disabled")
	}
	if got, _ := intents.Get(context.Background(), userID); got {
		t.Fatalf("drop must clear the persisted intent")
	}
}

//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
	"github.com/MikeSquared-Agency/leadlens/internal/dates"
	"github.com/MikeSquared-Agency/leadlens/internal/pipeline"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_SnapshotRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := dates.NewParser(nil)
	snap := pipeline.NewSnapshot([]conversation.Chat{
		{
			ChatID: "59170000001",
			Messages: []conversation.Message{{
				ChatID:    "59170000001",
				Type:      conversation.TypeReceived,
				Direction: conversation.DirectionInbound,
				Date:      "2024-01-05 08:00:00",
				Timestamp: p.Parse("2024-01-05 08:00:00"),
				Content:   "hola",
			}},
			FunnelStage: conversation.StageInquiry,
			Score:       40,
			HighValue:   true,
		},
	})

	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM chat_snapshots WHERE id = $1", snap.ID)
	})

	got, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if got.ID != snap.ID {
		t.Errorf("expected id %s, got %s", snap.ID, got.ID)
	}
	if len(got.Chats) != 1 || got.Chats[0].Score != 40 || !got.Chats[0].HighValue {
		t.Fatalf("unexpected chats %+v", got.Chats)
	}
	if !got.Chats[0].Messages[0].Timestamp.Valid {
		t.Error("expected resolved timestamp to survive the round trip")
	}

	// Saving again replaces the previous row.
	next := pipeline.NewSnapshot(nil)
	if err := s.SaveSnapshot(ctx, next); err != nil {
		t.Fatalf("SaveSnapshot (replace) failed: %v", err)
	}
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM chat_snapshots").Scan(&count); err != nil {
		t.Fatalf("count snapshots: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one stored snapshot, got %d", count)
	}

	if err := s.DeleteSnapshot(ctx); err != nil {
		t.Fatalf("DeleteSnapshot failed: %v", err)
	}
	if _, err := s.LoadSnapshot(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestIntegration_Settings(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	key := "test-" + uuid.New().String()[:8]
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM settings WHERE key = $1", key)
	})

	if _, err := s.GetSetting(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.PutSetting(ctx, key, "500"); err != nil {
		t.Fatalf("PutSetting failed: %v", err)
	}
	if err := s.PutSetting(ctx, key, "750"); err != nil {
		t.Fatalf("PutSetting (update) failed: %v", err)
	}
	got, err := s.GetSetting(ctx, key)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if got != "750" {
		t.Errorf("expected 750, got %q", got)
	}
}

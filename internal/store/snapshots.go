package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/leadlens/internal/pipeline"
)

// SaveSnapshot replaces the stored chat set with snap.
func (s *Store) SaveSnapshot(ctx context.Context, snap *pipeline.Snapshot) error {
	payload, err := json.Marshal(snap.Chats)
	if err != nil {
		return fmt.Errorf("marshal chats: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chat_snapshots`); err != nil {
		return fmt.Errorf("delete previous snapshot: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO chat_snapshots (id, ingested_at, chat_count, payload)
		VALUES ($1, $2, $3, $4)`,
		snap.ID, snap.IngestedAt, len(snap.Chats), payload,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored chat set, or ErrNotFound when none exists.
func (s *Store) LoadSnapshot(ctx context.Context) (*pipeline.Snapshot, error) {
	var (
		snap    pipeline.Snapshot
		payload []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, ingested_at, payload
		FROM chat_snapshots
		ORDER BY ingested_at DESC
		LIMIT 1`,
	).Scan(&snap.ID, &snap.IngestedAt, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if err := json.Unmarshal(payload, &snap.Chats); err != nil {
		return nil, fmt.Errorf("unmarshal chats: %w", err)
	}
	return &snap, nil
}

// DeleteSnapshot removes the stored chat set.
func (s *Store) DeleteSnapshot(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chat_snapshots`)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

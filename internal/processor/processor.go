package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/leadlens/internal/dates"
	"github.com/MikeSquared-Agency/leadlens/internal/hermes"
	"github.com/MikeSquared-Agency/leadlens/internal/pipeline"
	"github.com/MikeSquared-Agency/leadlens/internal/store"
)

// SnapshotStore persists the current chat set.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *pipeline.Snapshot) error
	LoadSnapshot(ctx context.Context) (*pipeline.Snapshot, error)
	DeleteSnapshot(ctx context.Context) error
}

// Publisher sends snapshot events.
type Publisher interface {
	Publish(subject string, data any) error
}

// Processor owns ingestion: it is the single writer of the chat-set snapshot.
type Processor struct {
	holder *pipeline.Holder
	parser *dates.Parser
	store  SnapshotStore
	events Publisher
	logger *slog.Logger

	mu sync.Mutex // one ingestion or clear at a time
}

// Summary describes a completed ingestion.
type Summary struct {
	SnapshotID string    `json:"snapshot_id"`
	IngestedAt time.Time `json:"ingested_at"`
	Rows       int       `json:"rows"`
	Dropped    int       `json:"dropped"`
	Chats      int       `json:"chats"`
	Messages   int       `json:"messages"`
	HighValue  int       `json:"high_value"`
}

// New returns a processor. s and pub may be nil to run without persistence or
// events.
func New(h *pipeline.Holder, p *dates.Parser, s SnapshotStore, pub Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		holder: h,
		parser: p,
		store:  s,
		events: pub,
		logger: logger,
	}
}

// Current returns the snapshot readers should query.
func (p *Processor) Current() *pipeline.Snapshot {
	return p.holder.Load()
}

// Parser returns the date parser shared with the query side.
func (p *Processor) Parser() *dates.Parser {
	return p.parser
}

// Ingest parses r and replaces the snapshot on success. A structural CSV
// error leaves the previous snapshot in place. Persistence and event failures
// are logged and do not undo the replacement.
func (p *Processor) Ingest(ctx context.Context, r io.Reader) (*Summary, error) {
	out, err := pipeline.Run(r, p.parser)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	snap := pipeline.NewSnapshot(out.Chats)
	p.holder.Replace(snap)

	sum := &Summary{
		SnapshotID: snap.ID.String(),
		IngestedAt: snap.IngestedAt,
		Rows:       out.Rows,
		Dropped:    out.Dropped,
		Chats:      len(out.Chats),
		Messages:   out.Messages(),
		HighValue:  out.HighValue(),
	}
	p.logger.Info("snapshot replaced",
		"snapshot_id", sum.SnapshotID,
		"rows", sum.Rows,
		"dropped", sum.Dropped,
		"chats", sum.Chats,
		"high_value", sum.HighValue,
	)

	if p.store != nil {
		if err := p.store.SaveSnapshot(ctx, snap); err != nil {
			p.logger.Error("failed to persist snapshot", "snapshot_id", sum.SnapshotID, "error", err)
		}
	}
	p.publish(hermes.SubjectSnapshotReplaced, hermes.SnapshotReplaced{
		SnapshotID: sum.SnapshotID,
		Chats:      sum.Chats,
		Messages:   sum.Messages,
		HighValue:  sum.HighValue,
		Timestamp:  snap.IngestedAt,
	})
	return sum, nil
}

// Clear replaces the snapshot with an empty set.
func (p *Processor) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.holder.Load()
	if p.store != nil {
		if err := p.store.DeleteSnapshot(ctx); err != nil {
			return fmt.Errorf("delete snapshot: %w", err)
		}
	}
	p.holder.Replace(nil)
	p.logger.Info("snapshot cleared", "previous_id", prev.ID)

	evt := hermes.SnapshotCleared{Timestamp: time.Now().UTC()}
	if !prev.IngestedAt.IsZero() {
		evt.PreviousID = prev.ID.String()
	}
	p.publish(hermes.SubjectSnapshotCleared, evt)
	return nil
}

// Restore installs the stored snapshot, if any. It is a no-op without a store.
func (p *Processor) Restore(ctx context.Context) error {
	if p.store == nil {
		return nil
	}
	snap, err := p.store.LoadSnapshot(ctx)
	if errors.Is(err, store.ErrNotFound) {
		p.logger.Info("no stored snapshot")
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.holder.Replace(snap)
	p.logger.Info("snapshot restored", "snapshot_id", snap.ID, "chats", len(snap.Chats))
	return nil
}

func (p *Processor) publish(subject string, data any) {
	if p.events == nil {
		return
	}
	if err := p.events.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

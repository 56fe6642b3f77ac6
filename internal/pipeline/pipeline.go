// Package pipeline turns ingested rows into the analysed chat set.
package pipeline

import (
	"io"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
	"github.com/MikeSquared-Agency/leadlens/internal/dates"
	"github.com/MikeSquared-Agency/leadlens/internal/funnel"
	"github.com/MikeSquared-Agency/leadlens/internal/ingest"
	"github.com/MikeSquared-Agency/leadlens/internal/latency"
	"github.com/MikeSquared-Agency/leadlens/internal/leadinfo"
	"github.com/MikeSquared-Agency/leadlens/internal/scoring"
)

// Build reconstructs chats from messages and derives every per-chat metric.
func Build(msgs []conversation.Message) []conversation.Chat {
	threads := conversation.Reconstruct(msgs)
	chats := make([]conversation.Chat, 0, len(threads))
	for _, th := range threads {
		chats = append(chats, Analyse(th))
	}
	return chats
}

// Analyse derives the analytics of one ordered thread.
func Analyse(th conversation.Thread) conversation.Chat {
	info := leadinfo.Extract(th.Messages)
	score := scoring.Score(th.Messages, info)
	return conversation.Chat{
		ChatID:      th.ChatID,
		Messages:    th.Messages,
		Lead:        info,
		Response:    latency.Compute(th.Messages),
		FunnelStage: funnel.Classify(th.Messages),
		Score:       score,
		HighValue:   scoring.IsHighValue(score),
	}
}

// Outcome summarises one ingestion.
type Outcome struct {
	Chats   []conversation.Chat
	Rows    int
	Dropped int
}

// Messages counts every message across the chat set.
func (o Outcome) Messages() int {
	n := 0
	for _, c := range o.Chats {
		n += len(c.Messages)
	}
	return n
}

// HighValue counts high-value chats.
func (o Outcome) HighValue() int {
	n := 0
	for _, c := range o.Chats {
		if c.HighValue {
			n++
		}
	}
	return n
}

// Run parses CSV content and builds the chat set. A structural CSV error is
// returned as-is and no chats are produced.
func Run(r io.Reader, p *dates.Parser) (*Outcome, error) {
	res, err := ingest.Parse(r, p)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Chats:   Build(res.Messages),
		Rows:    res.Rows,
		Dropped: res.Dropped,
	}, nil
}

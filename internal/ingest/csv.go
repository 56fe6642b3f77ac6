// Package ingest turns exported chat-log CSV content into message records.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
	"github.com/MikeSquared-Agency/leadlens/internal/dates"
)

// Header columns of a chat export. Names are case-sensitive.
const (
	ColChats   = "Chats"
	ColType    = "Type"
	ColDate    = "Date"
	ColName    = "Name"
	ColContent = "Content"
)

// ErrMalformed is returned when the row source itself cannot be read.
var ErrMalformed = errors.New("malformed csv")

const utf8BOM = "\ufeff"

// Result is the outcome of one ingestion pass.
type Result struct {
	Messages []conversation.Message
	Rows     int // data rows read, including dropped ones
	Dropped  int
}

// ParseBytes is Parse over in-memory content.
func ParseBytes(data []byte, p *dates.Parser) (*Result, error) {
	return Parse(bytes.NewReader(data), p)
}

// Parse reads a header row followed by data rows. Rows whose trimmed chat id
// or date is empty are dropped silently. Stray quotes inside a field are kept
// as literal text. A failure reading the source, or a header without the
// required columns, aborts the whole parse.
func Parse(r io.Reader, p *dates.Parser) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are padded, not rejected
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Result{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}

	cols := indexHeader(header)
	for _, required := range []string{ColChats, ColDate} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing %q column", ErrMalformed, required)
		}
	}

	res := &Result{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		res.Rows++

		msg, ok := toMessage(record, cols, p)
		if !ok {
			res.Dropped++
			continue
		}
		res.Messages = append(res.Messages, msg)
	}
	return res, nil
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func toMessage(record []string, cols map[string]int, p *dates.Parser) (conversation.Message, bool) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(strings.ReplaceAll(record[i], "\x00", ""))
	}

	chatID := strings.TrimSpace(strings.Trim(field(ColChats), `"`))
	date := field(ColDate)
	if chatID == "" || date == "" {
		return conversation.Message{}, false
	}

	typ := field(ColType)
	return conversation.Message{
		ChatID:     chatID,
		Type:       typ,
		Direction:  conversation.ParseDirection(typ),
		Date:       date,
		Timestamp:  p.Parse(date),
		SenderName: field(ColName),
		Content:    field(ColContent),
	}, true
}

package hermes

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSnapshotReplacedShape(t *testing.T) {
	evt := SnapshotReplaced{
		SnapshotID: "0b5c0c44-7f43-4d8e-9a55-2f4a7c1f0c11",
		Chats:      12,
		Messages:   340,
		HighValue:  3,
		Timestamp:  time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"snapshot_id", "chats", "messages", "high_value", "timestamp"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if raw["high_value"].(float64) != 3 {
		t.Errorf("expected high_value 3, got %v", raw["high_value"])
	}
}

func TestSnapshotClearedOmitsEmptyPrevious(t *testing.T) {
	data, err := json.Marshal(SnapshotCleared{Timestamp: time.Unix(0, 0).UTC()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"timestamp":"1970-01-01T00:00:00Z"}` {
		t.Errorf("unexpected payload %s", data)
	}
}

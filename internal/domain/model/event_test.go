package model

import (
	"encoding/json"
	"testing"
)

func TestEventWireFormat(t *testing.T) {
	e := Event{Seconds: 55.0, Time: 1428293287000, Color: CategoryPress6, Clicks: 50}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"seconds", "time", "color", "clicks"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected wire field %q, got %s", key, data)
		}
	}
	if raw["color"] != "flair-press-6" {
		t.Errorf("expected color flair-press-6, got %v", raw["color"])
	}
}

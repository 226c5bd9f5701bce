package asana

import (
	"encoding/json"
	"testing"
	"time"
)

func TestExternalWireFormatRoundTrip(t *testing.T) {
	// Sibling keys next to "workflows" must survive a decode/encode cycle.
	wire := `{"gid":"ext1","data":"{\"workflows\":{\"Launch\":\"Review\"},\"owner\":\"ops\"}"}`

	var external External
	if err := json.Unmarshal([]byte(wire), &external); err != nil {
		t.Fatalf("decode external: %v", err)
	}
	if external.GID != "ext1" {
		t.Fatalf("gid = %q", external.GID)
	}
	if external.Data["owner"] != "ops" {
		t.Fatalf("sibling key lost: %v", external.Data)
	}

	encoded, err := json.Marshal(external)
	if err != nil {
		t.Fatalf("encode external: %v", err)
	}
	var again External
	if err := json.Unmarshal(encoded, &again); err != nil {
		t.Fatalf("re-decode external: %v", err)
	}
	if again.Data["owner"] != "ops" {
		t.Fatalf("sibling key lost after round trip: %v", again.Data)
	}
	workflows, ok := again.Data["workflows"].(map[string]any)
	if !ok || workflows["Launch"] != "Review" {
		t.Fatalf("workflow state lost after round trip: %v", again.Data)
	}
}

func TestExternalMissingDataDecodesEmpty(t *testing.T) {
	var external External
	if err := json.Unmarshal([]byte(`{"gid":"ext1","data":null}`), &external); err != nil {
		t.Fatalf("decode external: %v", err)
	}
	if external.Data == nil || len(external.Data) != 0 {
		t.Fatalf("expected empty data map, got %v", external.Data)
	}
}

func TestDateSerialization(t *testing.T) {
	date := NewDate(2024, time.March, 15)
	encoded, err := json.Marshal(date)
	if err != nil {
		t.Fatalf("encode date: %v", err)
	}
	if string(encoded) != `"2024-03-15"` {
		t.Fatalf("encoded date = %s", encoded)
	}

	var decoded Date
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("decode date: %v", err)
	}
	if !decoded.Equal(date.Time) {
		t.Fatalf("round trip mismatch: %v != %v", decoded, date)
	}
}

func TestDateDays(t *testing.T) {
	earlier := NewDate(2024, time.January, 1)
	later := NewDate(2024, time.January, 31)
	if later.Days()-earlier.Days() != 30 {
		t.Fatalf("expected 30 days between dates, got %d", later.Days()-earlier.Days())
	}
}

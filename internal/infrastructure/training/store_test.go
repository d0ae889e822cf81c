package training

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/pkg/ansi"
)

func TestLogPairAppendsJSONLines(t *testing.T) {
	ansi.SetEnabled(false)
	var out bytes.Buffer
	store := NewStore(filepath.Join(t.TempDir(), "dataset.jsonl"), true, &out)

	store.LogPair("list files", "ls -la", domain.FeedbackPositive)
	store.LogPair("show disk", "df -h", domain.FeedbackCorrection)

	pairs, err := store.Pairs()
	if err != nil {
		t.Fatalf("Pairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Completion != "ls -la" || pairs[0].Feedback != domain.FeedbackPositive {
		t.Fatalf("first pair wrong: %+v", pairs[0])
	}
	if pairs[1].Feedback != domain.FeedbackCorrection {
		t.Fatalf("second pair wrong: %+v", pairs[1])
	}
	if pairs[0].Timestamp == 0 {
		t.Fatal("timestamp not stamped")
	}
	if !strings.Contains(out.String(), "Feedback logged to") {
		t.Fatalf("confirmation line missing: %q", out.String())
	}
}

func TestAutoLogOffIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	store := NewStore(path, false, &bytes.Buffer{})

	store.LogPair("p", "c", domain.FeedbackNegative)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("dataset file created while auto_log disabled (stat err: %v)", err)
	}
}

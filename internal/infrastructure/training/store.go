// Package training collects (prompt, completion, judgment) pairs into a
// JSONL dataset for later fine-tuning.
package training

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/pkg/ansi"
	"github.com/doeshing/aish/internal/ports"
)

// Store appends feedback pairs to the configured dataset file. When autoLog
// is off every call is a no-op.
type Store struct {
	path    string
	autoLog bool
	out     io.Writer
	mu      sync.Mutex

	now func() time.Time
}

// NewStore builds a feedback store. out receives the human-facing
// confirmation line; nil defaults to stdout.
func NewStore(path string, autoLog bool, out io.Writer) *Store {
	if out == nil {
		out = os.Stdout
	}
	return &Store{path: path, autoLog: autoLog, out: out, now: time.Now}
}

// Path returns the backing dataset file path.
func (s *Store) Path() string { return s.path }

// LogPair appends one feedback pair. Write failures are reported to the
// user and swallowed; feedback loss never fails the surrounding flow.
func (s *Store) LogPair(prompt, completion, feedback string) {
	if !s.autoLog {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := domain.FeedbackPair{
		Prompt:     prompt,
		Completion: completion,
		Feedback:   feedback,
		Timestamp:  float64(s.now().UnixNano()) / float64(time.Second),
	}
	data, err := json.Marshal(pair)
	if err != nil {
		fmt.Fprintln(s.out, ansi.Errorf("Could not encode feedback pair: %v", err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		fmt.Fprintln(s.out, ansi.Errorf("Could not write to dataset file: %v", err))
		return
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintln(s.out, ansi.Errorf("Could not write to dataset file: %v", err))
		return
	}
	defer file.Close()
	if _, err := file.Write(append(data, '\n')); err != nil {
		fmt.Fprintln(s.out, ansi.Errorf("Could not write to dataset file: %v", err))
		return
	}
	fmt.Fprintln(s.out, ansi.Info("Feedback logged to "+s.path))
}

// Pairs loads the dataset (best-effort; unparsable lines are skipped).
func (s *Store) Pairs() ([]domain.FeedbackPair, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var pairs []domain.FeedbackPair
	for _, line := range splitLines(data) {
		var pair domain.FeedbackPair
		if json.Unmarshal(line, &pair) == nil {
			pairs = append(pairs, pair)
		}
	}
	return pairs, nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

var _ ports.FeedbackRecorder = (*Store)(nil)

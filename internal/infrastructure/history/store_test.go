package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/ports"
)

func testRecord(offset time.Duration, prompt, command string) domain.HistoryRecord {
	return domain.HistoryRecord{
		Timestamp:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset),
		Prompt:          prompt,
		Command:         command,
		Verdict:         domain.VerdictClear,
		Executed:        true,
		Success:         true,
		ExitCode:        0,
		ExecutionTimeMS: 42,
	}
}

func stores(t *testing.T) map[string]ports.HistoryRepository {
	t.Helper()
	dir := t.TempDir()
	return map[string]ports.HistoryRepository{
		"sqlite": NewSQLiteStore(filepath.Join(dir, "history.db")),
		"file":   NewFileStore(filepath.Join(dir, "history.jsonl")),
	}
}

func TestSaveAndRecordsNewestFirst(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i, cmd := range []string{"ls", "pwd", "whoami"} {
				if err := store.Save(testRecord(time.Duration(i)*time.Minute, "p", cmd)); err != nil {
					t.Fatalf("Save: %v", err)
				}
			}

			records, err := store.Records(2, "")
			if err != nil {
				t.Fatalf("Records: %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("limit ignored: %d records", len(records))
			}
			if records[0].Command != "whoami" || records[1].Command != "pwd" {
				t.Fatalf("not newest first: %q, %q", records[0].Command, records[1].Command)
			}
			if records[0].Verdict != domain.VerdictClear || !records[0].Executed {
				t.Fatalf("fields lost: %+v", records[0])
			}
		})
	}
}

func TestRecordsSearch(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			store.Save(testRecord(0, "list files", "ls -la"))
			store.Save(testRecord(time.Minute, "disk usage", "df -h"))

			records, err := store.Records(0, "disk")
			if err != nil {
				t.Fatalf("Records: %v", err)
			}
			if len(records) != 1 || records[0].Command != "df -h" {
				t.Fatalf("search failed: %+v", records)
			}
		})
	}
}

func TestClear(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			store.Save(testRecord(0, "p", "ls"))
			if err := store.Clear(); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			records, err := store.Records(0, "")
			if err != nil {
				t.Fatalf("Records: %v", err)
			}
			if len(records) != 0 {
				t.Fatalf("history survived Clear: %+v", records)
			}
		})
	}
}

func TestEmptyStoreQueries(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			records, err := store.Records(10, "")
			if err != nil {
				t.Fatalf("Records on empty store: %v", err)
			}
			if len(records) != 0 {
				t.Fatalf("phantom records: %+v", records)
			}
		})
	}
}

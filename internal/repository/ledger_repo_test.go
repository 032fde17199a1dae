package repository

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"attendance-bot/internal/models"
)

func newTestFileRepo(t *testing.T) *FileLedgerRepository {
	t.Helper()

	repo, err := NewFileLedgerRepository(filepath.Join(t.TempDir(), "registro.json"))
	if err != nil {
		t.Fatalf("NewFileLedgerRepository: %v", err)
	}
	repo.logger.SetOutput(io.Discard)

	return repo
}

func record(kind string, stamp time.Time, username string) models.AttendanceRecord {
	return models.AttendanceRecord{Kind: kind, Stamp: stamp, Username: username}
}

func TestFileLedgerRepository_Load(t *testing.T) {
	t.Run("missing file is an empty ledger", func(t *testing.T) {
		repo := newTestFileRepo(t)

		ledger, err := repo.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(ledger) != 0 {
			t.Errorf("ledger has %d users, want 0", len(ledger))
		}
	})

	t.Run("corrupt file fails construction", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "registro.json")
		if err := os.WriteFile(path, []byte("{ truncated"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := NewFileLedgerRepository(path); err == nil {
			t.Fatal("expected error for corrupt ledger file")
		}
	})
}

func TestFileLedgerRepository_Append(t *testing.T) {
	now := time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)

	t.Run("appended record is the last one, earlier records untouched", func(t *testing.T) {
		repo := newTestFileRepo(t)

		first := record(models.KindEntry, now, "ana")
		second := record(models.KindExit, now.Add(8*time.Hour), "ana")

		if err := repo.Append("100", first); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := repo.Append("100", second); err != nil {
			t.Fatalf("Append: %v", err)
		}

		ledger, err := repo.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		records := ledger["100"]
		if len(records) != 2 {
			t.Fatalf("user has %d records, want 2", len(records))
		}
		if records[0].Kind != models.KindEntry || !records[0].Stamp.Equal(first.Stamp) {
			t.Errorf("first record changed: %+v", records[0])
		}
		last := records[len(records)-1]
		if last.Kind != models.KindExit || !last.Stamp.Equal(second.Stamp) {
			t.Errorf("last record = %+v, want the appended exit", last)
		}
	})

	t.Run("records survive a repository restart", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "registro.json")

		repo, err := NewFileLedgerRepository(path)
		if err != nil {
			t.Fatalf("NewFileLedgerRepository: %v", err)
		}
		repo.logger.SetOutput(io.Discard)

		if err := repo.Append("100", record(models.KindEntry, now, "ana")); err != nil {
			t.Fatalf("Append: %v", err)
		}

		// Новый экземпляр поверх того же файла - имитация перезапуска
		reopened, err := NewFileLedgerRepository(path)
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		reopened.logger.SetOutput(io.Discard)

		ledger, err := reopened.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(ledger["100"]) != 1 {
			t.Fatalf("user has %d records after restart, want 1", len(ledger["100"]))
		}
	})

	t.Run("rejects a record with an unknown kind", func(t *testing.T) {
		repo := newTestFileRepo(t)

		err := repo.Append("100", record("pausa", now, "ana"))
		if err == nil {
			t.Fatal("expected error for invalid record kind")
		}

		ledger, err := repo.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(ledger) != 0 {
			t.Error("invalid record was committed")
		}
	})

	t.Run("writes the legacy wire format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "registro.json")

		repo, err := NewFileLedgerRepository(path)
		if err != nil {
			t.Fatalf("NewFileLedgerRepository: %v", err)
		}
		repo.logger.SetOutput(io.Discard)

		if err := repo.Append("100", record(models.KindEntry, now, "ana")); err != nil {
			t.Fatalf("Append: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		for _, key := range []string{`"tipo"`, `"fecha"`, `"username"`, `"entrada"`} {
			if !strings.Contains(string(data), key) {
				t.Errorf("ledger file missing %s:\n%s", key, data)
			}
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "registro.json")

		repo, err := NewFileLedgerRepository(path)
		if err != nil {
			t.Fatalf("NewFileLedgerRepository: %v", err)
		}
		repo.logger.SetOutput(io.Discard)

		for i := 0; i < 5; i++ {
			kind := models.KindEntry
			if i%2 == 1 {
				kind = models.KindExit
			}
			if err := repo.Append("100", record(kind, now.Add(time.Duration(i)*time.Hour), "ana")); err != nil {
				t.Fatalf("Append %d: %v", i, err)
			}
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "registro.json" {
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("directory contents = %v, want only registro.json", names)
		}
	})
}

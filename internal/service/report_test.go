package service

import (
	"errors"
	"io"
	"testing"
	"time"

	"attendance-bot/internal/models"
)

func newTestReportService(repo *memLedgerRepo, now time.Time) *ReportService {
	s := NewReportService(repo)
	s.logger.SetOutput(io.Discard)
	s.now = func() time.Time { return now }
	return s
}

func entry(stamp time.Time, username string) models.AttendanceRecord {
	return models.AttendanceRecord{Kind: models.KindEntry, Stamp: stamp, Username: username}
}

func exit(stamp time.Time, username string) models.AttendanceRecord {
	return models.AttendanceRecord{Kind: models.KindExit, Stamp: stamp, Username: username}
}

func TestComputeHours(t *testing.T) {
	base := time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)

	t.Run("single shift from 09:00 to 17:30 is 8.50 hours", func(t *testing.T) {
		records := models.Records{
			entry(base, "ana"),
			exit(base.Add(8*time.Hour+30*time.Minute), "ana"),
		}
		if got := ComputeHours(records); got != 8.50 {
			t.Errorf("ComputeHours = %.2f, want 8.50", got)
		}
	})

	t.Run("empty input is zero", func(t *testing.T) {
		if got := ComputeHours(nil); got != 0 {
			t.Errorf("ComputeHours = %.2f, want 0", got)
		}
	})

	t.Run("unmatched entry beyond the shorter side is ignored", func(t *testing.T) {
		records := models.Records{
			entry(base, "ana"),
			exit(base.Add(2*time.Hour), "ana"),
			entry(base.Add(3*time.Hour), "ana"), // открытая смена
		}
		if got := ComputeHours(records); got != 2.00 {
			t.Errorf("ComputeHours = %.2f, want 2.00", got)
		}
	})

	t.Run("result is rounded to two decimals", func(t *testing.T) {
		records := models.Records{
			entry(base, "ana"),
			exit(base.Add(10*time.Minute), "ana"), // 0.1666... часа
		}
		if got := ComputeHours(records); got != 0.17 {
			t.Errorf("ComputeHours = %.2f, want 0.17", got)
		}
	})

	t.Run("negative span depresses the total as-is", func(t *testing.T) {
		// Позиционное сопоставление: выход раньше входа не исправляется
		records := models.Records{
			entry(base.Add(2*time.Hour), "ana"),
			exit(base, "ana"),
			entry(base.Add(3*time.Hour), "ana"),
			exit(base.Add(6*time.Hour), "ana"),
		}
		if got := ComputeHours(records); got != 1.00 {
			t.Errorf("ComputeHours = %.2f, want 1.00 (-2h + 3h)", got)
		}
	})
}

func TestReportService_FilterWindow(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	s := newTestReportService(&memLedgerRepo{}, now)

	records := models.Records{
		entry(now.AddDate(0, 0, -10), "ana"),       // за окном
		entry(now.AddDate(0, 0, -7), "ana"),        // ровно на границе
		entry(now.AddDate(0, 0, -3), "ana"),        // внутри окна
		entry(now, "ana"),                          // текущий момент
		entry(now.Add(time.Hour), "ana"),           // будущее
	}

	t.Run("keeps only records inside the trailing window", func(t *testing.T) {
		filtered, err := s.FilterWindow(records, 7)
		if err != nil {
			t.Fatalf("FilterWindow: %v", err)
		}
		if len(filtered) != 3 {
			t.Fatalf("filtered %d records, want 3", len(filtered))
		}
		if !filtered[0].Stamp.Equal(now.AddDate(0, 0, -7)) {
			t.Errorf("boundary record excluded, first = %v", filtered[0].Stamp)
		}
		for _, record := range filtered {
			if record.Stamp.After(now) {
				t.Errorf("future record %v passed the filter", record.Stamp)
			}
		}
	})

	t.Run("preserves the original order", func(t *testing.T) {
		filtered, err := s.FilterWindow(records, 7)
		if err != nil {
			t.Fatalf("FilterWindow: %v", err)
		}
		for i := 1; i < len(filtered); i++ {
			if filtered[i].Stamp.Before(filtered[i-1].Stamp) {
				t.Error("filtered records out of order")
			}
		}
	})

	t.Run("rejects non-positive day ranges", func(t *testing.T) {
		for _, days := range []int{0, -1} {
			if _, err := s.FilterWindow(records, days); !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("FilterWindow(%d) error = %v, want ErrInvalidWindow", days, err)
			}
		}
	})
}

func TestReportService_Summary(t *testing.T) {
	now := time.Date(2026, time.August, 31, 20, 0, 0, 0, time.UTC)

	repo := &memLedgerRepo{ledger: models.Ledger{
		"100": {
			entry(now.Add(-10*time.Hour), "ana"),
			exit(now.Add(-7*time.Hour), "ana"),
		},
	}}
	s := newTestReportService(repo, now)

	t.Run("returns the hours for the window", func(t *testing.T) {
		hours, err := s.Summary("100", 1)
		if err != nil {
			t.Fatalf("Summary: %v", err)
		}
		if hours != 3.00 {
			t.Errorf("hours = %.2f, want 3.00", hours)
		}
	})

	t.Run("unknown user has zero hours", func(t *testing.T) {
		hours, err := s.Summary("999", 7)
		if err != nil {
			t.Fatalf("Summary: %v", err)
		}
		if hours != 0 {
			t.Errorf("hours = %.2f, want 0", hours)
		}
	})

	t.Run("invalid window is rejected before any ledger access", func(t *testing.T) {
		if _, err := s.Summary("100", 0); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("Summary error = %v, want ErrInvalidWindow", err)
		}
	})
}

func TestReportService_Ranking(t *testing.T) {
	now := time.Date(2026, time.August, 31, 20, 0, 0, 0, time.UTC)

	t.Run("sorts users by hours descending", func(t *testing.T) {
		repo := &memLedgerRepo{ledger: models.Ledger{
			"200": {
				entry(now.Add(-5*time.Hour), "bruno"),
				exit(now.Add(-2*time.Hour), "bruno"),
			},
			"100": {
				entry(now.Add(-10*time.Hour), "ana"),
				exit(now.Add(-90*time.Minute), "ana"),
			},
		}}
		s := newTestReportService(repo, now)

		ranking, err := s.Ranking(7)
		if err != nil {
			t.Fatalf("Ranking: %v", err)
		}
		if len(ranking) != 2 {
			t.Fatalf("ranking has %d entries, want 2", len(ranking))
		}
		if ranking[0].DisplayName != "ana" || ranking[0].Hours != 8.50 {
			t.Errorf("first = %+v, want {ana 8.50}", ranking[0])
		}
		if ranking[1].DisplayName != "bruno" || ranking[1].Hours != 3.00 {
			t.Errorf("second = %+v, want {bruno 3.00}", ranking[1])
		}
	})

	t.Run("excludes users without hours in the window", func(t *testing.T) {
		repo := &memLedgerRepo{ledger: models.Ledger{
			"100": {
				entry(now.Add(-2*time.Hour), "ana"),
				exit(now.Add(-time.Hour), "ana"),
			},
			"300": {
				entry(now.Add(-time.Hour), "carla"), // открытая смена, пары нет
			},
		}}
		s := newTestReportService(repo, now)

		ranking, err := s.Ranking(7)
		if err != nil {
			t.Fatalf("Ranking: %v", err)
		}
		if len(ranking) != 1 || ranking[0].DisplayName != "ana" {
			t.Fatalf("ranking = %+v, want only ana", ranking)
		}
	})

	t.Run("display name comes from the first ever record", func(t *testing.T) {
		repo := &memLedgerRepo{ledger: models.Ledger{
			"100": {
				entry(now.Add(-4*time.Hour), "ana_old"),
				exit(now.Add(-3*time.Hour), "ana_new"),
			},
		}}
		s := newTestReportService(repo, now)

		ranking, err := s.Ranking(7)
		if err != nil {
			t.Fatalf("Ranking: %v", err)
		}
		if len(ranking) != 1 || ranking[0].DisplayName != "ana_old" {
			t.Fatalf("ranking = %+v, want display name ana_old", ranking)
		}
	})

	t.Run("ties keep a deterministic order", func(t *testing.T) {
		ledger := models.Ledger{}
		for _, id := range []string{"3", "1", "2"} {
			ledger[id] = models.Records{
				entry(now.Add(-3*time.Hour), "user"+id),
				exit(now.Add(-time.Hour), "user"+id),
			}
		}
		s := newTestReportService(&memLedgerRepo{ledger: ledger}, now)

		first, err := s.Ranking(7)
		if err != nil {
			t.Fatalf("Ranking: %v", err)
		}

		for i := 0; i < 10; i++ {
			again, err := s.Ranking(7)
			if err != nil {
				t.Fatalf("Ranking: %v", err)
			}
			for j := range first {
				if again[j].DisplayName != first[j].DisplayName {
					t.Fatalf("run %d: order changed at %d: %s vs %s",
						i, j, again[j].DisplayName, first[j].DisplayName)
				}
			}
		}
	})

	t.Run("invalid window is rejected", func(t *testing.T) {
		s := newTestReportService(&memLedgerRepo{}, now)
		if _, err := s.Ranking(-5); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("Ranking error = %v, want ErrInvalidWindow", err)
		}
	})
}

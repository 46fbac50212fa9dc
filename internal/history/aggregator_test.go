package history

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tomato/internal/clock"
	"tomato/internal/local"
	"tomato/internal/model"
	"tomato/internal/remote/remotetest"
)

func newTestAggregator(t *testing.T) (*Aggregator, *remotetest.Fake, *local.Store, *clock.Fake) {
	t.Helper()
	ls, err := local.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { ls.Close() })

	fake := remotetest.New()
	clk := clock.NewFake(time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC))
	return NewAggregator(zerolog.Nop(), fake, ls, clk), fake, ls, clk
}

func TestAddSessionAppendsAndRecomputes(t *testing.T) {
	a, _, _, clk := newTestAggregator(t)
	ctx := context.Background()

	a.AddSession(ctx, AddSessionInput{Type: model.TypeWork, DurationMinutes: 25, Completed: true})
	a.AddSession(ctx, AddSessionInput{Type: model.TypeShortBreak, DurationMinutes: 5, Completed: true})
	a.AddSession(ctx, AddSessionInput{Type: model.TypeWork, DurationMinutes: 25, Completed: false})

	bucket := a.loadLocal(clk.Today())
	if len(bucket.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(bucket.Sessions))
	}
	if bucket.TotalWorkSessions != 2 {
		t.Fatalf("expected 2 work sessions, got %d", bucket.TotalWorkSessions)
	}
	if bucket.TotalBreakSessions != 1 {
		t.Fatalf("expected 1 break session, got %d", bucket.TotalBreakSessions)
	}
	// Only completed work counts toward work time.
	if bucket.TotalWorkTime != 25 {
		t.Fatalf("expected 25 work minutes, got %d", bucket.TotalWorkTime)
	}
	if bucket.CompletionRate != 2.0/3.0 {
		t.Fatalf("expected completion rate 2/3, got %f", bucket.CompletionRate)
	}
}

func TestRollupsIdempotent(t *testing.T) {
	bucket := model.DailyHistory{
		Date: "2025-06-10",
		Sessions: []model.SessionRecord{
			{Type: model.TypeWork, DurationMinutes: 25, Completed: true},
			{Type: model.TypeLongBreak, DurationMinutes: 15, Completed: true},
			{Type: model.TypeWork, DurationMinutes: 25, Completed: false},
		},
	}

	bucket.Recompute()
	first := bucket
	bucket.Recompute()

	if bucket.TotalWorkSessions != first.TotalWorkSessions ||
		bucket.TotalBreakSessions != first.TotalBreakSessions ||
		bucket.TotalWorkTime != first.TotalWorkTime ||
		bucket.CompletionRate != first.CompletionRate {
		t.Fatalf("recompute is not idempotent: %+v vs %+v", first, bucket)
	}
}

func TestAddSessionRemoteFailureKeptLocally(t *testing.T) {
	a, fake, ls, clk := newTestAggregator(t)
	fake.Fail = true

	rec, err := a.AddSession(context.Background(), AddSessionInput{
		Type: model.TypeWork, DurationMinutes: 25, Completed: true,
	})
	if err != nil {
		t.Fatalf("remote failure must not surface: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("record needs an id")
	}

	var bucket model.DailyHistory
	if err := ls.Get("sessions-"+clk.Today(), &bucket); err != nil {
		t.Fatal(err)
	}
	if len(bucket.Sessions) != 1 {
		t.Fatalf("expected 1 local session, got %d", len(bucket.Sessions))
	}
}

func TestAddSessionUsesStartTimeBucket(t *testing.T) {
	a, _, _, _ := newTestAggregator(t)

	start := time.Date(2025, 6, 9, 23, 30, 0, 0, time.UTC)
	a.AddSession(context.Background(), AddSessionInput{
		Type: model.TypeWork, DurationMinutes: 25, Completed: true, StartTime: start,
	})

	bucket := a.loadLocal("2025-06-09")
	if len(bucket.Sessions) != 1 {
		t.Fatalf("expected session bucketed under its start date, got %+v", bucket)
	}
}

func TestLoadDailyPrefersRemote(t *testing.T) {
	a, fake, _, clk := newTestAggregator(t)

	fake.Sessions = []model.SessionRecord{
		{ID: "r1", Type: model.TypeWork, DurationMinutes: 25, Completed: true, StartedAt: clk.Now()},
	}

	bucket, err := a.LoadToday(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(bucket.Sessions) != 1 || bucket.Sessions[0].ID != "r1" {
		t.Fatalf("expected remote sessions, got %+v", bucket.Sessions)
	}
	if bucket.TotalWorkSessions != 1 || bucket.TotalWorkTime != 25 {
		t.Fatalf("rollups not recomputed from remote list: %+v", bucket)
	}
}

func TestLoadDailyFallsBackToLocal(t *testing.T) {
	a, fake, _, _ := newTestAggregator(t)

	a.AddSession(context.Background(), AddSessionInput{Type: model.TypeWork, DurationMinutes: 25, Completed: true})
	fake.Fail = true

	bucket, err := a.LoadToday(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(bucket.Sessions) != 1 {
		t.Fatalf("expected local bucket, got %+v", bucket)
	}
}

func TestLoadDailyMissingDayIsEmpty(t *testing.T) {
	a, fake, _, _ := newTestAggregator(t)
	fake.Fail = true

	bucket, err := a.LoadDaily(context.Background(), "2020-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if bucket.Date != "2020-01-01" || len(bucket.Sessions) != 0 {
		t.Fatalf("expected empty bucket, got %+v", bucket)
	}
}

func TestLoadDailyMalformedLocalIsEmpty(t *testing.T) {
	a, fake, ls, _ := newTestAggregator(t)
	fake.Fail = true

	ls.Set("sessions-2025-06-10", 42)

	bucket, err := a.LoadDaily(context.Background(), "2025-06-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(bucket.Sessions) != 0 {
		t.Fatalf("expected empty bucket for malformed data, got %+v", bucket)
	}
}

func TestWeeklyStatsOrderAndZeroFill(t *testing.T) {
	a, _, _, clk := newTestAggregator(t)

	// One session today, one two days ago.
	a.AddSession(context.Background(), AddSessionInput{Type: model.TypeWork, DurationMinutes: 25, Completed: true})
	a.AddSession(context.Background(), AddSessionInput{
		Type: model.TypeWork, DurationMinutes: 25, Completed: true,
		StartTime: clk.Now().AddDate(0, 0, -2),
	})

	week := a.WeeklyStats()
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}

	// Oldest first, ending today.
	if week[6].Date != clk.Today() {
		t.Fatalf("expected last entry to be today, got %s", week[6].Date)
	}
	for i := 1; i < 7; i++ {
		if week[i-1].Date >= week[i].Date {
			t.Fatalf("days not ascending: %s then %s", week[i-1].Date, week[i].Date)
		}
	}

	if week[6].TotalWorkSessions != 1 {
		t.Fatalf("expected today's session, got %+v", week[6])
	}
	if week[4].TotalWorkSessions != 1 {
		t.Fatalf("expected session two days ago, got %+v", week[4])
	}
	// The rest are zero-valued, never missing.
	for _, i := range []int{0, 1, 2, 3, 5} {
		if week[i].TotalWorkSessions != 0 || len(week[i].Sessions) != 0 {
			t.Fatalf("expected zero bucket at %d, got %+v", i, week[i])
		}
	}
}

// Package history keeps the append-only session log, bucketed per calendar
// day, and the rollup counters derived from it.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tomato/internal/clock"
	"tomato/internal/gateway"
	"tomato/internal/local"
	"tomato/internal/model"
	"tomato/internal/remote"
)

func bucketKey(date string) string {
	return "sessions-" + date
}

// Aggregator is the only writer of session records. Records are immutable
// once appended; the day bucket's rollups are recomputed in full from the
// session list on every append so replays and out-of-order appends cannot
// make them drift.
type Aggregator struct {
	log    zerolog.Logger
	remote remote.Commander
	local  *local.Store
	clock  clock.Clock
}

func NewAggregator(log zerolog.Logger, rc remote.Commander, ls *local.Store, clk clock.Clock) *Aggregator {
	return &Aggregator{
		log:    log.With().Str("component", "history").Logger(),
		remote: rc,
		local:  ls,
		clock:  clk,
	}
}

// AddSessionInput describes one finished interval.
type AddSessionInput struct {
	Type            string
	DurationMinutes int
	Completed       bool
	TaskID          *string
	// StartTime defaults to now when zero.
	StartTime time.Time
}

// AddSession appends an immutable record to the start date's bucket and
// recomputes its rollups. The remote append is fire-and-forget: failure is
// logged, not retried, and never surfaced.
func (a *Aggregator) AddSession(ctx context.Context, in AddSessionInput) (model.SessionRecord, error) {
	startedAt := in.StartTime
	if startedAt.IsZero() {
		startedAt = a.clock.Now()
	}

	rec := model.SessionRecord{
		ID:              uuid.NewString(),
		TaskID:          in.TaskID,
		Type:            in.Type,
		DurationMinutes: in.DurationMinutes,
		Completed:       in.Completed,
		StartedAt:       startedAt,
	}
	if in.Completed {
		now := a.clock.Now()
		rec.CompletedAt = &now
	}

	if err := a.remote.AddSessionRecord(ctx, rec); err != nil {
		a.log.Debug().Err(err).Msg("remote session append failed, record kept locally")
	}

	date := startedAt.UTC().Format(time.DateOnly)
	bucket := a.loadLocal(date)
	bucket.Sessions = append(bucket.Sessions, rec)
	bucket.Recompute()

	if err := a.local.Set(bucketKey(date), bucket); err != nil {
		return model.SessionRecord{}, err
	}
	return rec, nil
}

// LoadDaily returns the bucket for one calendar day, preferring the remote
// log and synthesizing rollups from whatever session list it gets.
func (a *Aggregator) LoadDaily(ctx context.Context, date string) (model.DailyHistory, error) {
	return gateway.Perform(ctx, a.log, "history.load_daily",
		func(ctx context.Context) (model.DailyHistory, error) {
			records, err := a.remote.GetDailySessions(ctx, date)
			if err != nil {
				return model.DailyHistory{}, err
			}
			bucket := model.EmptyHistory(date)
			bucket.Sessions = append(bucket.Sessions, records...)
			bucket.Recompute()
			return bucket, nil
		},
		func() (model.DailyHistory, error) {
			return a.loadLocal(date), nil
		},
		nil,
	)
}

// LoadToday is LoadDaily for the current date.
func (a *Aggregator) LoadToday(ctx context.Context) (model.DailyHistory, error) {
	return a.LoadDaily(ctx, a.clock.Today())
}

// WeeklyStats returns the last 7 calendar days oldest first, reading each
// day's local bucket and substituting an empty one for days with no data.
// It never fails.
func (a *Aggregator) WeeklyStats() []model.DailyHistory {
	today := a.clock.Now().UTC()
	out := make([]model.DailyHistory, 0, 7)
	for i := 6; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(time.DateOnly)
		out = append(out, a.loadLocal(date))
	}
	return out
}

// loadLocal reads a day bucket from fallback storage. Missing or malformed
// data yields an empty bucket.
func (a *Aggregator) loadLocal(date string) model.DailyHistory {
	var bucket model.DailyHistory
	if err := a.local.Get(bucketKey(date), &bucket); err != nil {
		return model.EmptyHistory(date)
	}
	if bucket.Sessions == nil {
		bucket.Sessions = []model.SessionRecord{}
	}
	bucket.Date = date
	bucket.Recompute()
	return bucket
}

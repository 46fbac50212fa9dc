// Package stats reads the remote-authoritative daily summaries. Reads always
// produce a value: a zero-valued record stands in whenever the remote is
// unreachable or has nothing for the date, so dashboard callers never
// null-check.
package stats

import (
	"context"

	"github.com/rs/zerolog"

	"tomato/internal/clock"
	"tomato/internal/model"
	"tomato/internal/remote"
)

type Service struct {
	log    zerolog.Logger
	remote remote.Commander
	clock  clock.Clock
}

func NewService(log zerolog.Logger, rc remote.Commander, clk clock.Clock) *Service {
	return &Service{
		log:    log.With().Str("component", "stats").Logger(),
		remote: rc,
		clock:  clk,
	}
}

// LoadDaily returns the stats for one date. Remote failure and remote
// absence both synthesize a zero-valued record for that date.
func (s *Service) LoadDaily(ctx context.Context, date string) model.DailyStats {
	d, err := s.remote.GetDailyStats(ctx, date)
	if err != nil {
		s.log.Debug().Err(err).Str("date", date).Msg("daily stats unavailable, synthesizing empty")
		return model.EmptyStats(date)
	}
	if d == nil {
		return model.EmptyStats(date)
	}
	return *d
}

// LoadToday is LoadDaily for the current date.
func (s *Service) LoadToday(ctx context.Context) model.DailyStats {
	return s.LoadDaily(ctx, s.clock.Today())
}

// Recent returns up to limit most-recent daily summaries, newest first.
// Degrades to an empty slice when the remote is unreachable.
func (s *Service) Recent(ctx context.Context, limit int) []model.DailyStats {
	stats, err := s.remote.RecentStats(ctx, limit)
	if err != nil {
		s.log.Debug().Err(err).Msg("recent stats unavailable")
		return []model.DailyStats{}
	}
	return stats
}

// Heatmap returns per-day completed work counts for the trailing window.
// Degrades to an empty slice when the remote is unreachable.
func (s *Service) Heatmap(ctx context.Context, days int) []model.HeatmapPoint {
	points, err := s.remote.Heatmap(ctx, days)
	if err != nil {
		s.log.Debug().Err(err).Msg("heatmap unavailable")
		return []model.HeatmapPoint{}
	}
	return points
}

// Package gateway implements the dual-tier persistence pattern: every
// durable operation tries the authoritative remote store first and falls
// back to local durable storage when the remote is unavailable. Callers
// never observe the remote failure; the only trace is a log line.
package gateway

import (
	"context"

	"github.com/rs/zerolog"
)

// Perform runs remoteOp and returns its result. On any remote failure it
// runs fallback instead and returns that value; the remote error is logged
// and swallowed. onSuccess, when non-nil, runs only after a successful
// remote call, letting callers reconcile local state to the remote-returned
// entity. Errors from fallback itself are local-storage errors and do
// propagate.
func Perform[T any](ctx context.Context, log zerolog.Logger, op string,
	remoteOp func(context.Context) (T, error),
	fallback func() (T, error),
	onSuccess func(T),
) (T, error) {
	v, err := remoteOp(ctx)
	if err == nil {
		if onSuccess != nil {
			onSuccess(v)
		}
		return v, nil
	}

	log.Debug().Err(err).Str("op", op).Msg("remote unavailable, using local fallback")
	return fallback()
}

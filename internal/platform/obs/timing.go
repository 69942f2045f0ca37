package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// TickKey carries the simulator's current tick number through context, the
// way the teacher's HTTP layer carried a request id.
const TickKey ctxKey = "tick"

// WithTick returns a context annotated with the simulator's current tick
// number, for Time to pick up.
func WithTick(ctx context.Context, tick int) context.Context {
	return context.WithValue(ctx, TickKey, tick)
}

// Time logs the duration of the operation named by name, starting now and
// ending when the returned func runs. Pass the address of a named error
// return so a non-nil error gets logged alongside the duration.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	tick, _ := ctx.Value(TickKey).(int)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("tick=%d op=%s dur=%dms err=%v", tick, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("tick=%d op=%s dur=%dms", tick, name, dur.Milliseconds())
	}
}

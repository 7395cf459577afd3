package fetchguard

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the cancellation cause for a fetch replaced by a newer one
// for the same key.
var ErrSuperseded = errors.New("superseded by a newer request")

// Guard cancels an in-flight fetch when a newer fetch starts for the same key,
// so a slow response can never overwrite a fresher one.
type Guard struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]entry
}

type entry struct {
	seq    uint64
	cancel context.CancelCauseFunc
}

func New() *Guard {
	return &Guard{inflight: make(map[string]entry)}
}

// Begin derives a context for a fetch under key, cancelling the previous
// holder of the key with ErrSuperseded. done must be called when the fetch ends.
func (g *Guard) Begin(ctx context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)

	g.mu.Lock()
	g.seq++
	mine := g.seq
	if prev, ok := g.inflight[key]; ok {
		prev.cancel(ErrSuperseded)
	}
	g.inflight[key] = entry{seq: mine, cancel: cancel}
	g.mu.Unlock()

	done := func() {
		g.mu.Lock()
		if cur, ok := g.inflight[key]; ok && cur.seq == mine {
			delete(g.inflight, key)
		}
		g.mu.Unlock()
		cancel(nil)
	}
	return ctx, done
}

// Superseded reports whether ctx was cancelled because a newer fetch took over.
func Superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrSuperseded)
}

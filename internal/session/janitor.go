package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type expiredDeleter interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunJanitor deletes expired sessions every interval until ctx is done.
func RunJanitor(ctx context.Context, store expiredDeleter, every time.Duration, log logrus.FieldLogger) {
	if every <= 0 {
		every = time.Hour
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := store.DeleteExpired(ctx, now)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.WithError(err).Warn("delete expired sessions")
				continue
			}
			if n > 0 {
				log.WithField("deleted", n).Info("expired sessions removed")
			}
		}
	}
}

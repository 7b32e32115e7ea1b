package main

import (
	"context"
	"time"

	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
)

// sweepSessions drops expired sessions every ttl/2 until ctx is done
func sweepSessions(ctx context.Context, store *session.Store, ttl time.Duration, log *logger.Logger) {
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Logger.Debug().Int("removed", n).Int("remaining", store.Len()).Msg("expired sessions swept")
			}
		}
	}
}

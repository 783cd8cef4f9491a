package main

import (
	"time"

	"github.com/ericogr/titan-arena/internal/logging"
	"github.com/ericogr/titan-arena/internal/realtime"
	"github.com/ericogr/titan-arena/internal/service"
)

// finishedRetention is how long a finished game stays readable before the
// scanner evicts it.
const finishedRetention = 10 * time.Minute

// startTimeoutScanner expires stalled rounds, pushes the resulting updates
// to the players and evicts stale games and websocket sessions.
func startTimeoutScanner(manager *service.Manager, hub *realtime.Hub, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			for _, u := range manager.ExpireStalled(now) {
				hub.PublishUpdate(u.Game, u.Result)
			}
			if n := manager.PruneFinished(now, finishedRetention); n > 0 {
				logging.Debug("evicted finished games", logging.Fields{"count": n})
			}
			if n := hub.PruneSessions(now); n > 0 {
				logging.Debug("expired websocket sessions", logging.Fields{"count": n})
			}
		}
	}()
}

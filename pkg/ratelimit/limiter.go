package ratelimit

import (
	"context"
	"sync"
	"time"

	"classroom-ai-be/internal/pkg/logger"
)

// ServiceLimit is a burst-then-pause budget: Burst admissions are granted
// immediately, then every caller waits Pause before the counter resets.
type ServiceLimit struct {
	Burst int
	Pause time.Duration
}

// Limiter gates calls to external AI services. One instance is shared by the
// whole process; the throughput ceiling belongs to the service, not to any
// single job. Not a token bucket: the workload issues bursty batches, so a
// crude "N requests, then silence" governor is enough.
type Limiter struct {
	mu       sync.Mutex
	limits   map[string]ServiceLimit
	counters map[string]int
	log      logger.ILogger
}

func New(limits map[string]ServiceLimit, log logger.ILogger) *Limiter {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	counters := make(map[string]int, len(limits))
	for service := range limits {
		counters[service] = 0
	}
	return &Limiter{
		limits:   limits,
		counters: counters,
		log:      log,
	}
}

// Wait blocks until one request to the named service is admitted, then counts
// it. The first caller to find the counter at the limit sleeps for the
// configured pause while holding the lock, so every concurrent caller waits
// behind it; afterwards the counter resets and admission resumes.
//
// An unconfigured service name is a no-op: callers are never blocked on a
// limiter they weren't set up for.
func (l *Limiter) Wait(ctx context.Context, service string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit, ok := l.limits[service]
	if !ok || limit.Burst <= 0 {
		return nil
	}

	if l.counters[service] >= limit.Burst {
		l.log.Warn("ratelimit", "Burst limit reached, pausing", map[string]interface{}{
			"service": service,
			"pause":   limit.Pause.String(),
		})
		timer := time.NewTimer(limit.Pause)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		l.counters[service] = 0
	}

	l.counters[service]++
	return nil
}

package middleware

import (
	"net/http"
	"parkgate/pkg/logger"
	"sync"
	"time"
)

// PlateExtractor pulls the rate-limit key (a normalized license plate) out of
// a request. Gate devices send it in the X-Plate header so the body never has
// to be read twice.
type PlateExtractor func(r *http.Request) string

type PlateRateLimiter struct {
	mu             sync.RWMutex
	requests       map[string][]time.Time
	limit          int
	window         time.Duration
	plateExtractor PlateExtractor
	log            *logger.Logger
	stopCh         chan struct{}
}

func NewPlateRateLimiter(limit int, window time.Duration, extractor PlateExtractor, log *logger.Logger) *PlateRateLimiter {
	limiter := &PlateRateLimiter{
		requests:       make(map[string][]time.Time),
		limit:          limit,
		window:         window,
		plateExtractor: extractor,
		log:            log,
		stopCh:         make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *PlateRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for plate, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, plate)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PlateRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *PlateRateLimiter) Allow(plate string) bool {
	if plate == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[plate][:0]
	for _, ts := range rl.requests[plate] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[plate] = valid
		return false
	}

	rl.requests[plate] = append(valid, now)
	return true
}

func PlateRateLimit(limiter *PlateRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plate := extractPlate(r, limiter.plateExtractor)

			if plate == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(plate) {
				rejectRateLimited(w, limiter.log, r, plate)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractPlate(r *http.Request, extractor PlateExtractor) string {
	if extractor == nil {
		return r.Header.Get("X-Plate")
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, plate string) {
	log.Warn("Rate limit exceeded",
		"request_id", requestIDFromContext(r.Context()),
		"plate", plate,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

func DefaultPlateExtractor(r *http.Request) string {
	return r.Header.Get("X-Plate")
}

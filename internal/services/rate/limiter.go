package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidSubject = errors.New("login subject is required")

const (
	loginShortWindow = time.Minute
	loginLongWindow  = time.Hour
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	ResetWindows(ctx context.Context, keys ...string) error
}

// Limiter throttles password login attempts per email address over a
// one-minute and a one-hour window. A zero limit disables that window.
type Limiter struct {
	store     WindowStore
	perMinute int
	perHour   int
}

func NewLimiter(store WindowStore, perMinute, perHour int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if perHour < 0 {
		perHour = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		perHour:   perHour,
	}
}

// AllowLogin counts one attempt for subject and reports whether it may
// proceed. When blocked, retryAfterSec is the wait until the tightest
// exceeded window resets.
func (l *Limiter) AllowLogin(ctx context.Context, subject string) (int64, bool, error) {
	subject = normalizeSubject(subject)
	if subject == "" {
		return 0, false, ErrInvalidSubject
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	blocked := false
	retryAfterSec := int64(0)
	for _, w := range l.windows(subject) {
		count, ttl, err := l.store.IncrementWindow(ctx, w.key, w.window)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			blocked = true
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl), 1)
		}
	}

	if blocked {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// Reset clears the counters of subject after a successful login.
func (l *Limiter) Reset(ctx context.Context, subject string) error {
	subject = normalizeSubject(subject)
	if subject == "" || l.store == nil {
		return nil
	}
	return l.store.ResetWindows(ctx, minuteKey(subject), hourKey(subject))
}

type limitWindow struct {
	key    string
	window time.Duration
	limit  int
}

func (l *Limiter) windows(subject string) []limitWindow {
	out := make([]limitWindow, 0, 2)
	if l.perMinute > 0 {
		out = append(out, limitWindow{key: minuteKey(subject), window: loginShortWindow, limit: l.perMinute})
	}
	if l.perHour > 0 {
		out = append(out, limitWindow{key: hourKey(subject), window: loginLongWindow, limit: l.perHour})
	}
	return out
}

func normalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}

func minuteKey(subject string) string {
	return "rate:login:min:" + subject
}

func hourKey(subject string) string {
	return "rate:login:hour:" + subject
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}

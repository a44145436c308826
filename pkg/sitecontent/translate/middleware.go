package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tendant/site-content/pkg/sitecontent"
	"golang.org/x/time/rate"
)

var (
	// ErrCircuitOpen indicates the provider was skipped because its breaker is open.
	ErrCircuitOpen = errors.New("provider circuit open")

	// ErrThrottled indicates the local rate limit gave no slot before the context ended.
	ErrThrottled = errors.New("provider throttled")
)

// BreakerConfig controls when a failing provider is taken out of rotation.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// Timeout is how long the breaker stays open before a trial call.
	Timeout time.Duration
	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration
}

type breakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[string]
}

// WithBreaker wraps p with a circuit breaker. Rejected translations
// (ErrUntranslated) do not count as failures.
func WithBreaker(p Provider, cfg BreakerConfig) Provider {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUntranslated) || errors.Is(err, ErrEmptyResponse)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Translation provider breaker changed state", "provider", name, "from", from.String(), "to", to.String())
		},
	}
	return &breakerProvider{next: p, cb: gobreaker.NewCircuitBreaker[string](settings)}
}

func (b *breakerProvider) Name() string { return b.next.Name() }

func (b *breakerProvider) Translate(ctx context.Context, text string, source, target sitecontent.Language) (string, error) {
	out, err := b.cb.Execute(func() (string, error) {
		return b.next.Translate(ctx, text, source, target)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%s: %w", b.Name(), ErrCircuitOpen)
	}
	return out, err
}

type limitedProvider struct {
	next    Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p so calls wait for a token from a limiter allowing
// perSecond calls with the given burst.
func WithRateLimit(p Provider, perSecond float64, burst int) Provider {
	if perSecond <= 0 {
		return p
	}
	if burst < 1 {
		burst = 1
	}
	return &limitedProvider{next: p, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *limitedProvider) Name() string { return l.next.Name() }

func (l *limitedProvider) Translate(ctx context.Context, text string, source, target sitecontent.Language) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%s: %w: %v", l.Name(), ErrThrottled, err)
	}
	return l.next.Translate(ctx, text, source, target)
}

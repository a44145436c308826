package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/site-content/pkg/sitecontent"
)

func TestWithBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := failingProvider("flaky")
	p := WithBreaker(inner, BreakerConfig{FailureThreshold: 2, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := p.Translate(context.Background(), "Hello", sitecontent.LanguageEN, sitecontent.LanguageAZ)
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}

	_, err := p.Translate(context.Background(), "Hello", sitecontent.LanguageEN, sitecontent.LanguageAZ)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, inner.Calls())
	assert.Equal(t, "flaky", p.Name())
}

func TestWithBreaker_RejectionsDoNotTrip(t *testing.T) {
	inner := rejectingProvider("echo")
	p := WithBreaker(inner, BreakerConfig{FailureThreshold: 1, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := p.Translate(context.Background(), "Hello", sitecontent.LanguageEN, sitecontent.LanguageAZ)
		assert.ErrorIs(t, err, ErrUntranslated)
	}
	assert.Equal(t, 3, inner.Calls())
}

func TestWithRateLimit_ZeroIsPassthrough(t *testing.T) {
	inner := taggingProvider("p")
	assert.Same(t, Provider(inner), WithRateLimit(inner, 0, 0))
}

func TestWithRateLimit_CancelledContext(t *testing.T) {
	inner := taggingProvider("p")
	p := WithRateLimit(inner, 0.001, 1)

	_, err := p.Translate(context.Background(), "a", sitecontent.LanguageEN, sitecontent.LanguageAZ)
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Translate(ctx, "b", sitecontent.LanguageEN, sitecontent.LanguageAZ)
	assert.ErrorIs(t, err, ErrThrottled)
	assert.Equal(t, 1, inner.Calls())
}

func TestOrchestrator_SkipsOpenProvider(t *testing.T) {
	primary := failingProvider("google")
	secondary := taggingProvider("mymemory")
	o := New(WithBreaker(primary, BreakerConfig{FailureThreshold: 1, Timeout: time.Minute}), secondary)

	assert.Equal(t, "Hi@az", o.TranslateOne(context.Background(), "Hi", sitecontent.LanguageEN, sitecontent.LanguageAZ))
	assert.Equal(t, "Hi@ru", o.TranslateOne(context.Background(), "Hi", sitecontent.LanguageEN, sitecontent.LanguageRU))
	assert.Equal(t, 1, primary.Calls())
	assert.Equal(t, 2, secondary.Calls())
}

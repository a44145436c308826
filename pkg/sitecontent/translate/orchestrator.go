package translate

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/metrics"
)

// Orchestrator tries its providers in order and keeps the first usable
// result. It never returns an error; "" means untranslated.
type Orchestrator struct {
	providers []Provider
}

// New creates an orchestrator over providers, tried in the given order. Nil
// providers are skipped.
func New(providers ...Provider) *Orchestrator {
	o := &Orchestrator{}
	for _, p := range providers {
		if p != nil {
			o.providers = append(o.providers, p)
		}
	}
	return o
}

// Providers returns the provider names in try order.
func (o *Orchestrator) Providers() []string {
	names := make([]string, 0, len(o.providers))
	for _, p := range o.providers {
		names = append(names, p.Name())
	}
	return names
}

// TranslateOne translates text from source to target. Blank text gives ""
// and equal languages give text back; neither calls a provider.
func (o *Orchestrator) TranslateOne(ctx context.Context, text string, source, target sitecontent.Language) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if source == target {
		return text
	}

	for _, p := range o.providers {
		start := time.Now()
		out, err := p.Translate(ctx, text, source, target)
		metrics.TranslationDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

		if err == nil && strings.TrimSpace(out) != "" {
			metrics.TranslationCalls.WithLabelValues(p.Name(), "success").Inc()
			return out
		}
		if err == nil {
			err = ErrEmptyResponse
		}
		metrics.TranslationCalls.WithLabelValues(p.Name(), outcome(err)).Inc()
		slog.Warn("Translation provider failed",
			"provider", p.Name(), "source", source, "target", target, "error", err)
	}

	metrics.UntranslatedFields.WithLabelValues(string(target)).Inc()
	return ""
}

// TranslateFields translates every field from source into each other
// language, one call at a time. The result holds all three languages per
// field: the source text under source and "" for pairs that failed.
func (o *Orchestrator) TranslateFields(ctx context.Context, source sitecontent.Language, fields map[string]string) sitecontent.Translations {
	if !source.IsValid() {
		source = sitecontent.DefaultLanguage
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(sitecontent.Translations, len(fields))
	for _, name := range names {
		out[name] = map[sitecontent.Language]string{source: fields[name]}
	}

	for _, target := range sitecontent.Languages {
		if target == source {
			continue
		}
		for _, name := range names {
			out[name][target] = o.TranslateOne(ctx, fields[name], source, target)
		}
	}
	return out
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrUntranslated), errors.Is(err, ErrEmptyResponse):
		return "rejected"
	case errors.Is(err, ErrThrottled):
		return "throttled"
	case errors.Is(err, ErrCircuitOpen):
		return "open"
	}
	return "error"
}

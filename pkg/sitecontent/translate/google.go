package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tendant/site-content/pkg/sitecontent"
)

// DefaultGoogleURL is the Cloud Translation v2 endpoint.
const DefaultGoogleURL = "https://translation.googleapis.com/language/translate/v2"

// Google calls the keyed Cloud Translation v2 API.
type Google struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGoogle creates a Google provider. An empty baseURL selects DefaultGoogleURL.
func NewGoogle(apiKey, baseURL string, timeout time.Duration) (*Google, error) {
	if apiKey == "" {
		return nil, errors.New("google translate: api key is required")
	}
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	return &Google{apiKey: apiKey, baseURL: baseURL, client: makeHTTPClient(timeout)}, nil
}

func (g *Google) Name() string { return "google" }

type googleRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

func (g *Google) Translate(ctx context.Context, text string, source, target sitecontent.Language) (string, error) {
	payload, err := json.Marshal(googleRequest{Q: text, Source: string(source), Target: string(target), Format: "text"})
	if err != nil {
		return "", err
	}
	endpoint, err := withQuery(g.baseURL, url.Values{"key": {g.apiKey}})
	if err != nil {
		return "", err
	}
	req, err := newJSONRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return "", err
	}

	body, err := doRequest(g.client, g.Name(), req)
	if err != nil {
		return "", err
	}

	var resp googleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("google: decoding response: %w", err)
	}
	if len(resp.Data.Translations) == 0 {
		return "", ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Data.Translations[0].TranslatedText)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

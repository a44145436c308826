package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/site-content/pkg/sitecontent"
)

// DefaultMyMemoryURL is the free MyMemory endpoint.
const DefaultMyMemoryURL = "https://api.mymemory.translated.net/get"

// MyMemory calls the free MyMemory API. It often echoes the input back when
// it has no translation; such results are rejected with ErrUntranslated.
type MyMemory struct {
	baseURL string
	email   string
	client  *http.Client
}

// NewMyMemory creates a MyMemory provider. email, when set, raises the daily quota.
func NewMyMemory(baseURL, email string, timeout time.Duration) *MyMemory {
	if baseURL == "" {
		baseURL = DefaultMyMemoryURL
	}
	return &MyMemory{
		baseURL: baseURL,
		email:   email,
		client:  makeHTTPClient(timeout),
	}
}

func (m *MyMemory) Name() string { return "mymemory" }

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	// responseStatus is a number on success and sometimes a string on errors.
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails string          `json:"responseDetails"`
}

func (r myMemoryResponse) status() int {
	raw := strings.Trim(string(r.ResponseStatus), `"`)
	if raw == "" {
		return http.StatusOK
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func (m *MyMemory) Translate(ctx context.Context, text string, source, target sitecontent.Language) (string, error) {
	q := url.Values{
		"q":        {text},
		"langpair": {string(source) + "|" + string(target)},
	}
	if m.email != "" {
		q.Set("de", m.email)
	}
	endpoint, err := withQuery(m.baseURL, q)
	if err != nil {
		return "", err
	}
	req, err := newJSONRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	body, err := doRequest(m.client, m.Name(), req)
	if err != nil {
		return "", err
	}

	var resp myMemoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("mymemory: decoding response: %w", err)
	}
	if status := resp.status(); status != http.StatusOK {
		return "", &StatusError{Provider: m.Name(), StatusCode: status, Body: resp.ResponseDetails}
	}

	out := strings.TrimSpace(resp.ResponseData.TranslatedText)
	if out == "" {
		return "", ErrEmptyResponse
	}
	if SameText(out, text) {
		return "", ErrUntranslated
	}
	return out, nil
}

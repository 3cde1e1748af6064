// Package client talks to the analysis HTTP API and drives the submission flow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeUpstream      = "UPSTREAM_ERROR"
	CodeTimeout       = "TIMEOUT"
	CodeNotFound      = "NOT_FOUND"
	CodeInternal      = "INTERNAL"
)

// APIError is a non-success envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// ErrNetwork wraps transport failures, where no response was received.
var ErrNetwork = errors.New("backend unreachable")

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

type AnalyzeResult struct {
	ID     string `json:"id"`
	Result string `json:"result"`
}

type HistoryResult struct {
	Analyses []*domain.Record `json:"analyses"`
	Total    int              `json:"total"`
}

type API struct {
	BaseURL string
	HTTP    *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		// the server bounds completion at 60s; leave headroom for the response
		HTTP: &http.Client{Timeout: 90 * time.Second},
	}
}

func (a *API) Analyze(ctx context.Context, token string, in domain.Input) (*AnalyzeResult, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out AnalyzeResult
	if err := a.do(ctx, http.MethodPost, "/analyze", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Get(ctx context.Context, id string) (*domain.Record, error) {
	var out domain.Record
	if err := a.do(ctx, http.MethodGet, "/analysis/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) History(ctx context.Context, token string, limit, offset int) (*HistoryResult, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	p := "/history"
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	var out HistoryResult
	if err := a.do(ctx, http.MethodGet, p, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) do(ctx context.Context, method, path, token string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	hc := a.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{Status: resp.StatusCode, Code: CodeInternal, Message: "malformed response: " + err.Error()}
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

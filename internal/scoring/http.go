package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/validation"
)

const (
	// DefaultTimeout bounds one /predict call. Model inference on CPU is slow.
	DefaultTimeout = 120 * time.Second

	maxResponseBytes = 8 << 20
)

// HTTPClient calls the scoring service over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		h.http = c
	}
}

// WithTimeout bounds each Predict call. Zero disables the bound.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPClient) {
		h.timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(h *HTTPClient) {
		h.logger = l
	}
}

// NewHTTPClient creates a client for the service at baseURL (e.g. http://127.0.0.1:8001).
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Predict posts the essay to /predict. Transport failures, non-2xx statuses,
// timeouts and unusable envelopes come back as *models.TransportError. When
// ctx itself is canceled the returned error wraps context.Canceled instead.
func (h *HTTPClient) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling predict request: %w", err)
	}

	callCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, h.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, &models.TransportError{Op: "request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	h.logger.Debug("calling scoring service", "url", httpReq.URL.String(), "models", req.Models, "essay_bytes", len(req.Essay))

	resp, err := h.http.Do(httpReq)
	if err != nil {
		return nil, h.callError(ctx, "request", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, h.callError(ctx, "read", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.TransportError{
			Op:         "predict",
			StatusCode: resp.StatusCode,
			Err:        errors.New(snippet(data)),
		}
	}

	return DecodeResponse(data)
}

// DecodeResponse validates and decodes a raw /predict body.
func DecodeResponse(data []byte) (*PredictResponse, error) {
	if errs := validation.ValidatePredictResponse(data); len(errs) > 0 {
		return nil, &models.TransportError{
			Op:  "decode",
			Err: fmt.Errorf("unusable response envelope: %s", strings.Join(errs, "; ")),
		}
	}

	out := &PredictResponse{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, &models.TransportError{Op: "decode", Err: err}
	}
	if out.Results == nil {
		return nil, &models.TransportError{Op: "decode", Err: errors.New("response has no results")}
	}
	return out, nil
}

// callError distinguishes caller cancellation from transport failure.
func (h *HTTPClient) callError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("predict %s: %w", op, ctx.Err())
	}
	h.logger.Debug("scoring service call failed", "op", op, "error", err)
	return &models.TransportError{Op: op, Err: err}
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "empty response body"
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// Package classifier is the gateway to the external banknote analysis service.
//
// The service is treated as untrusted: every response is decoded into a typed
// wire struct and validated before it becomes a model.Classification.
package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dtroode/currencyguard-server/internal/logger"
	"github.com/dtroode/currencyguard-server/internal/model"
)

var (
	// ErrGatewayUnavailable is returned when the classifier cannot be reached or times out.
	ErrGatewayUnavailable = errors.New("classifier unavailable")
	// ErrGatewayError is returned when the classifier answers with a non-2xx status.
	ErrGatewayError = errors.New("classifier returned an error status")
	// ErrGatewayMalformedResponse is returned when the response body cannot be trusted.
	ErrGatewayMalformedResponse = errors.New("classifier returned a malformed response")
)

// Attempt outcomes reported to the Observer.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
	OutcomeMalformed   = "malformed"
)

const (
	maxResponseBytes     = 1 << 20
	defaultRetryInterval = 200 * time.Millisecond
	healthPath           = "/health"
)

// Observer receives the outcome and latency of every classifier attempt.
type Observer interface {
	ObserveClassifier(outcome string, duration time.Duration)
}

// Config describes how to reach the classifier.
type Config struct {
	URL         string
	AnalyzePath string
	Field       string
	Timeout     time.Duration
	MaxRetries  uint64
}

// Client implements model.Classifier over HTTP.
type Client struct {
	httpClient    *http.Client
	analyzeURL    string
	healthURL     string
	field         string
	timeout       time.Duration
	maxRetries    uint64
	retryInterval time.Duration
	policy        *bluemonday.Policy
	observer      Observer
	logger        *logger.Logger
}

var _ model.Classifier = (*Client)(nil)

// New creates a classifier client. Outbound requests are traced through otelhttp.
func New(cfg Config, observer Observer, logger *logger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse classifier url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("classifier url must be http or https, got %q", cfg.URL)
	}

	analyzePath := cfg.AnalyzePath
	if analyzePath == "" {
		analyzePath = "/analyze"
	}
	field := cfg.Field
	if field == "" {
		field = "file"
	}

	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		analyzeURL:    base.JoinPath(analyzePath).String(),
		healthURL:     base.JoinPath(healthPath).String(),
		field:         field,
		timeout:       cfg.Timeout,
		maxRetries:    cfg.MaxRetries,
		retryInterval: defaultRetryInterval,
		policy:        bluemonday.StrictPolicy(),
		observer:      observer,
		logger:        logger,
	}, nil
}

// Classify sends the image to the analyzer and returns the validated result.
func (c *Client) Classify(ctx context.Context, image model.Image) (model.Classification, error) {
	body, contentType, err := c.encodeImage(image)
	if err != nil {
		return model.Classification{}, err
	}

	attempt := 0
	operation := func() (model.Classification, error) {
		attempt++
		result, err := c.analyze(ctx, body, contentType)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil || !errors.Is(err, errConnection) {
			return model.Classification{}, backoff.Permanent(err)
		}
		c.logger.Warn("Classifier client: attempt failed",
			"attempt", attempt,
			"error", err.Error())
		return model.Classification{}, err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryInterval), c.maxRetries),
		ctx,
	)

	result, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		if ctx.Err() != nil && !isGatewayError(err) {
			err = fmt.Errorf("%w: %w", ErrGatewayUnavailable, ctx.Err())
		}
		return model.Classification{}, err
	}

	return result, nil
}

// Health reports whether the analyzer answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: health status %d", ErrGatewayError, resp.StatusCode)
	}
	return nil
}

// errConnection marks transport failures that happened before any response.
var errConnection = errors.New("connection failed")

func (c *Client) analyze(ctx context.Context, body []byte, contentType string) (result model.Classification, err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveClassifier(outcomeOf(err), time.Since(start))
		}
	}()

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.analyzeURL, bytes.NewReader(body))
	if err != nil {
		return model.Classification{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if attemptCtx.Err() != nil {
			return model.Classification{}, fmt.Errorf("%w: %w", ErrGatewayUnavailable, attemptCtx.Err())
		}
		return model.Classification{}, fmt.Errorf("%w: %w: %w", ErrGatewayUnavailable, errConnection, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		if attemptCtx.Err() != nil {
			return model.Classification{}, fmt.Errorf("%w: %w", ErrGatewayUnavailable, attemptCtx.Err())
		}
		return model.Classification{}, fmt.Errorf("%w: failed to read body: %w", ErrGatewayMalformedResponse, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Classifier client: analyzer returned error status",
			"status", resp.StatusCode,
			"body", snippet(raw))
		return model.Classification{}, fmt.Errorf("%w: status %d", ErrGatewayError, resp.StatusCode)
	}

	if len(raw) > maxResponseBytes {
		return model.Classification{}, fmt.Errorf("%w: body exceeds %d bytes", ErrGatewayMalformedResponse, maxResponseBytes)
	}

	return c.decode(raw)
}

func (c *Client) encodeImage(image model.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := image.Filename
	if filename == "" {
		filename = "upload"
	}
	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(c.field), escapeQuotes(filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

func isGatewayError(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable) ||
		errors.Is(err, ErrGatewayError) ||
		errors.Is(err, ErrGatewayMalformedResponse)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrGatewayUnavailable):
		return OutcomeUnavailable
	case errors.Is(err, ErrGatewayError):
		return OutcomeError
	default:
		return OutcomeMalformed
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func snippet(raw []byte) string {
	const max = 256
	if len(raw) > max {
		raw = raw[:max]
	}
	return string(raw)
}

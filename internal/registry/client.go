package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
)

// Client talks to the upstream document registry service. The registry owns
// document records and filled-file submissions; this service only reads them
// and posts review decisions.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	logger     *zap.Logger
	metrics    MetricsRecorder
}

// MetricsRecorder receives registry round-trip observations. A nil recorder
// disables instrumentation.
type MetricsRecorder interface {
	ObserveRegistryCall(operation string, duration time.Duration)
	RecordRegistryError(code string)
}

// Config configures the registry client.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
}

// NewClient builds a registry client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// SetMetrics attaches a metrics recorder to the client.
func (c *Client) SetMetrics(m MetricsRecorder) {
	c.metrics = m
}

// envelope is the registry's single expected response wrapper. The payload
// always lives under "data"; anything else is a decode error, never a shape
// to fall back from.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// ReviewRequest carries an accept/reject decision.
type ReviewRequest struct {
	Action      string `json:"action"`
	ReviewNotes string `json:"reviewNotes,omitempty"`
}

// CreateDocumentRequest sends a new fillable document to tenants.
type CreateDocumentRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	PropertyID  string   `json:"propertyId"`
	FilePath    string   `json:"filePath"`
	SendToAll   bool     `json:"sendToAll"`
	Tenants     []string `json:"tenants,omitempty"`
}

// reviewEcho is the acknowledged-but-optional review record in review
// responses. The registry does not reliably echo it.
type reviewEcho struct {
	Review *models.Review `json:"review,omitempty"`
}

// ListDocuments returns all documents distributed by the given manager.
func (c *Client) ListDocuments(ctx context.Context, managerID string) ([]models.Document, error) {
	endpoint := fmt.Sprintf("/documents?managerId=%s", url.QueryEscape(managerID))
	raw, err := c.do(ctx, "list_documents", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var docs []models.Document
	if err := decodeStrict(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocument fetches a single document by id.
func (c *Client) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	raw, err := c.do(ctx, "get_document", http.MethodGet, "/documents/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := decodeStrict(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateDocument registers and distributes a new document.
func (c *Client) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*models.Document, error) {
	raw, err := c.do(ctx, "create_document", http.MethodPost, "/documents", req)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := decodeStrict(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SubmitDocumentReview posts a broadcast-mode decision for a whole document.
// The returned review is nil when the registry acknowledged without echoing
// the stored record.
func (c *Client) SubmitDocumentReview(ctx context.Context, documentID string, req ReviewRequest) (*models.Review, error) {
	raw, err := c.do(ctx, "submit_document_review", http.MethodPost, "/documents/"+url.PathEscape(documentID)+"/review", req)
	if err != nil {
		return nil, err
	}
	return extractReview(raw), nil
}

// SubmitTenantReview posts a per-tenant decision scoped to one document and
// one tenant's submission.
func (c *Client) SubmitTenantReview(ctx context.Context, documentID, tenantID string, req ReviewRequest) (*models.Review, error) {
	endpoint := "/documents/" + url.PathEscape(documentID) + "/tenants/" + url.PathEscape(tenantID) + "/review"
	raw, err := c.do(ctx, "submit_tenant_review", http.MethodPost, endpoint, req)
	if err != nil {
		return nil, err
	}
	return extractReview(raw), nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, payload interface{}) (json.RawMessage, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode registry payload")
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += c.maxRetries
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		raw, retryable, err := c.roundTrip(ctx, method, endpoint, body)
		if err == nil {
			if c.metrics != nil {
				c.metrics.ObserveRegistryCall(op, time.Since(start))
			}
			return raw, nil
		}
		lastErr = err
		if !retryable || attempt == attempts-1 {
			break
		}
		c.logger.Warn("registry request failed, retrying",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrRegistry.Code, appErrors.ErrRegistry.Status, "registry request cancelled")
		case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		}
	}
	if c.metrics != nil {
		c.metrics.RecordRegistryError(appErrors.FromError(lastErr).Code)
	}
	return nil, lastErr
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, body []byte) (json.RawMessage, bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build registry request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, appErrors.Wrap(err, appErrors.ErrRegistry.Code, appErrors.ErrRegistry.Status, "document registry unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, appErrors.Wrap(err, appErrors.ErrRegistry.Code, appErrors.ErrRegistry.Status, "failed to read registry response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := serverMessage(payload)
		if message == "" {
			message = fmt.Sprintf("document registry returned status %d", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, message)
		}
		retryable := resp.StatusCode >= 500
		return nil, retryable, appErrors.New(appErrors.ErrRegistry.Code, appErrors.ErrRegistry.Status, message)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrDecode.Code, appErrors.ErrDecode.Status, "registry response is not a JSON envelope")
	}
	return env.Data, false, nil
}

// decodeStrict unmarshals the envelope payload into dest and converts any
// shape mismatch into a typed decode error instead of guessing alternatives.
func decodeStrict(raw json.RawMessage, dest interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return appErrors.Clone(appErrors.ErrDecode, "registry response missing data payload")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrDecode.Code, appErrors.ErrDecode.Status, "registry data payload has unexpected shape")
	}
	return nil
}

func extractReview(raw json.RawMessage) *models.Review {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var echo reviewEcho
	if err := json.Unmarshal(raw, &echo); err != nil {
		return nil
	}
	if echo.Review != nil && echo.Review.Status != "" {
		return echo.Review
	}
	return nil
}

func serverMessage(payload []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return ""
	}
	if env.Error.Message != "" {
		return env.Error.Message
	}
	return env.Message
}

// Package client talks to the webhook-capture service.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/charliek/webhook/internal/constants"
	"github.com/charliek/webhook/internal/domain"
)

// maxSuggestions is how many look-alike ids a NotFoundError carries
const maxSuggestions = 3

// Client is an HTTP client for the webhook-capture service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new service client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: constants.DefaultRequestTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NewToken returns a fresh inbox token. Inboxes exist as soon as something is
// sent to them, so tokens are generated locally.
func NewToken() string {
	return uuid.New().String()
}

// InboxURL returns the URL webhooks should be sent to for token
func (c *Client) InboxURL(token string) string {
	return JoinURL(c.baseURL, token)
}

// ListRequests returns up to params.Limit of the most recent requests in the
// token's inbox, oldest first. An inbox nobody has written to yet is empty,
// not an error.
func (c *Client) ListRequests(ctx context.Context, params domain.ListParams) ([]domain.RequestRecord, error) {
	if params.Token == "" {
		return nil, errors.New("token is required")
	}
	if params.Limit < 1 || params.Limit > constants.MaxRequestCount {
		return nil, fmt.Errorf("%w: %d (must be between 1 and %d)", domain.ErrInvalidCount, params.Limit, constants.MaxRequestCount)
	}

	endpoint := JoinURL(c.baseURL, params.Token, "log", strconv.Itoa(params.Limit))
	c.logger.Debug("listing requests", "url", endpoint, "limit", params.Limit)

	var wire []wireRequest
	found, err := c.get(ctx, "list", endpoint, &wire)
	if err != nil {
		return nil, err
	}
	if !found {
		c.logger.Debug("inbox not found, treating as empty", "token", params.Token)
		return []domain.RequestRecord{}, nil
	}

	records := make([]domain.RequestRecord, 0, len(wire))
	for _, w := range wire {
		rec := w.toRecord()
		if rec.Token == "" {
			rec.Token = params.Token
		}
		if params.Method != "" && !strings.EqualFold(rec.Method, params.Method) {
			continue
		}
		records = append(records, rec)
	}

	c.logger.Debug("listed requests", "token", params.Token, "count", len(records))
	return records, nil
}

// GetRequest looks up one request by id among the most recent requests of the
// inbox. A unique id prefix, such as the short id shown in listings, also
// matches.
func (c *Client) GetRequest(ctx context.Context, token, id string) (domain.RequestRecord, error) {
	if id == "" {
		return domain.RequestRecord{}, errors.New("request id is required")
	}

	records, err := c.ListRequests(ctx, domain.ListParams{Token: token, Limit: constants.DetailLookupLimit})
	if err != nil {
		return domain.RequestRecord{}, err
	}

	var prefixed []domain.RequestRecord
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
		if strings.HasPrefix(rec.ID, id) {
			prefixed = append(prefixed, rec)
		}
	}

	switch len(prefixed) {
	case 1:
		return prefixed[0], nil
	case 0:
		return domain.RequestRecord{}, &domain.NotFoundError{
			Token:       token,
			ID:          id,
			Suggestions: suggestIDs(id, records),
		}
	default:
		return domain.RequestRecord{}, fmt.Errorf("%w: %s matches %d requests", domain.ErrAmbiguousID, id, len(prefixed))
	}
}

// suggestIDs returns the ids that fuzzily resemble id, best first
func suggestIDs(id string, records []domain.RequestRecord) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}

	matches := fuzzy.Find(id, ids)
	var out []string
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// get performs a GET and decodes the JSON response into v. It returns false
// without error when the service answers 404.
func (c *Client) get(ctx context.Context, op, endpoint string, v interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, &domain.TransportError{Op: op, URL: endpoint, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, &domain.TransportError{Op: op, URL: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, &domain.TransportError{Op: "decode", URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	return true, nil
}

// JoinURL joins path segments onto base without doubling slashes. Empty
// segments are skipped.
func JoinURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, seg := range segments {
		seg = strings.Trim(seg, "/")
		if seg == "" {
			continue
		}
		b.WriteString("/")
		b.WriteString(url.PathEscape(seg))
	}
	return b.String()
}

package basecamp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tomnomnom/linkheader"
	"go.uber.org/zap"

	"hufschlaeger.net/basecamp-cardtables/internal/config"
	"hufschlaeger.net/basecamp-cardtables/internal/logger"
	"hufschlaeger.net/basecamp-cardtables/internal/tracing"
)

// DefaultMaxPages begrenzt, wie vielen Seiten ein List-Aufruf folgt.
const DefaultMaxPages = 50

// HTTPDoer ist der Teil von *http.Client, den der Client braucht.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client spricht mit einem Basecamp Account und hält keinen Zustand zwischen Aufrufen.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	token      string
	userAgent  string
	maxPages   int
	logger     *logger.Logger
	now        func() time.Time

	Projects         *Projects
	CardTables       *CardTables
	CardTableColumns *CardTableColumns
	CardTableCards   *CardTableCards
}

type Option func(*Client)

func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.httpClient = doer }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithBaseURL überschreibt die aus der Konfiguration gebildete Account-URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

func NewClient(cfg *config.Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.GetBasecampBaseURL(),
		token:      cfg.AccessToken,
		userAgent:  cfg.UserAgent,
		maxPages:   DefaultMaxPages,
		logger:     logger.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Projects = &Projects{client: c}
	c.CardTables = &CardTables{client: c}
	c.CardTableColumns = &CardTableColumns{client: c}
	c.CardTableCards = &CardTableCards{client: c}
	return c
}

// ValidateConnection prüft, ob Token und Account funktionieren
func (c *Client) ValidateConnection(ctx context.Context) error {
	var me struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := c.get(ctx, c.url("/my/profile.json"), &me); err != nil {
		return fmt.Errorf("basecamp connection failed: %w", err)
	}
	c.logger.Debug("authenticated", zap.Int64("person_id", me.ID), zap.String("name", me.Name))
	return nil
}

func (c *Client) url(format string, args ...interface{}) string {
	return c.baseURL + fmt.Sprintf(format, args...)
}

func (c *Client) get(ctx context.Context, rawURL string, result interface{}) error {
	_, err := c.do(ctx, http.MethodGet, rawURL, nil, result)
	return err
}

func (c *Client) post(ctx context.Context, rawURL string, payload, result interface{}) error {
	_, err := c.do(ctx, http.MethodPost, rawURL, payload, result)
	return err
}

func (c *Client) put(ctx context.Context, rawURL string, payload, result interface{}) error {
	_, err := c.do(ctx, http.MethodPut, rawURL, payload, result)
	return err
}

// getList holt eine Collection und folgt rel="next" Links, höchstens maxPages Seiten.
// Links auf einen anderen Host werden nicht verfolgt, sonst ginge das Token dorthin.
func getList[T any](ctx context.Context, c *Client, rawURL string) ([]T, error) {
	items := make([]T, 0)
	next := rawURL

	for page := 1; next != ""; page++ {
		if page > c.maxPages {
			c.logger.Warn("pagination limit reached, result truncated",
				zap.String("path", pathOf(rawURL)), zap.Int("max_pages", c.maxPages))
			break
		}
		if !sameOrigin(rawURL, next) {
			return nil, fmt.Errorf("next page %s leaves %s: %w", next, rawURL, ErrForeignPageLink)
		}

		var batch []T
		header, err := c.do(ctx, http.MethodGet, next, nil, &batch)
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)

		next = nextPageURL(header.Values("Link"), next)
	}

	return items, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload, result interface{}) (http.Header, error) {
	path := pathOf(rawURL)
	requestID := uuid.NewString()

	ctx, span := tracing.TraceHTTPRequest(ctx, method, path, requestID)
	defer span.End()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	log := c.logger.WithFields(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%s %s: %w", method, path, err)
		tracing.TraceHTTPResponse(span, 0, err)
		log.Warn("request failed", zap.Error(err))
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Debug("closing response body failed", zap.Error(cerr))
		}
	}()

	log.Debug("request done",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", c.now().Sub(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp, method, path, c.now())
		tracing.TraceHTTPResponse(span, resp.StatusCode, apiErr)
		log.Warn("request rejected", zap.Int("status", resp.StatusCode), zap.Error(apiErr))
		return nil, apiErr
	}
	tracing.TraceHTTPResponse(span, resp.StatusCode, nil)

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return resp.Header, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return resp.Header, nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.Header, nil
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}

// nextPageURL liefert das rel="next" Ziel eines RFC 8288 Link Headers, relativ zu current aufgelöst.
func nextPageURL(links []string, current string) string {
	for _, link := range linkheader.ParseMultiple(links).FilterByRel("next") {
		next, err := url.Parse(strings.TrimSpace(link.URL))
		if err != nil {
			return ""
		}
		base, err := url.Parse(current)
		if err != nil {
			return ""
		}
		return base.ResolveReference(next).String()
	}
	return ""
}

// sameOrigin vergleicht Schema und Host (inkl. Port).
func sameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}

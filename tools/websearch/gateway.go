package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/verifyflow/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Hit represents a single search result.
type Hit struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// Options configures a search request.
type Options struct {
	MaxResults int    `json:"max_results"`
	Region     string `json:"region,omitempty"` // e.g. "us-en", "wt-wt"
}

// Session is a scoped search connection. Close must be safe to call once
// after any outcome of Search.
type Session interface {
	Search(ctx context.Context, query string, opts Options) ([]Hit, error)
	Close() error
}

// Provider defines the interface for web search backends.
// Hit bodies must not start with types.ErrorMarker.
type Provider interface {
	// Open creates a session for one query.
	Open(ctx context.Context) (Session, error)
	// Name returns the provider name.
	Name() string
}

// Status classifies a search outcome.
type Status int

const (
	StatusFound Status = iota
	StatusNoResult
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNoResult:
		return "no_result"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// SearchResult is the gateway's only return value. Snippet is set for
// StatusFound, Err for StatusFailed.
type SearchResult struct {
	Status  Status
	Snippet string
	Err     *types.Error
}

// Found reports whether a snippet was retrieved.
func (r SearchResult) Found() bool { return r.Status == StatusFound }

// SearchRecorder receives one observation per search.
type SearchRecorder interface {
	RecordSearch(provider string, status string, duration time.Duration)
}

// GatewayConfig configures the search gateway.
type GatewayConfig struct {
	Region    string        // Region passed to the backend
	Timeout   time.Duration // Per-search timeout, 0 disables
	RateLimit rate.Limit    // Queries per second, 0 disables
}

// DefaultGatewayConfig returns sensible defaults.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Region:    "wt-wt",
		Timeout:   15 * time.Second,
		RateLimit: 1,
	}
}

// Gateway wraps a Provider with session scoping, rate limiting and result
// normalisation.
type Gateway struct {
	provider Provider
	cfg      GatewayConfig
	limiter  *rate.Limiter
	recorder SearchRecorder
	logger   *zap.Logger
}

// GatewayOption customises a Gateway.
type GatewayOption func(*Gateway)

// WithSearchRecorder attaches a metrics recorder.
func WithSearchRecorder(r SearchRecorder) GatewayOption {
	return func(g *Gateway) { g.recorder = r }
}

// NewGateway creates a search gateway.
func NewGateway(provider Provider, cfg GatewayConfig, logger *zap.Logger, opts ...GatewayOption) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "search_gateway")),
	}
	if cfg.RateLimit > 0 {
		g.limiter = rate.NewLimiter(cfg.RateLimit, 1)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// hitHeadroom 额外请求的候选结果数，用于跳过空结果或以错误标记开头的结果
const hitHeadroom = 4

// Search runs one query and returns the body of the first usable hit.
// The session is asked for limit+hitHeadroom hits so that unusable leading
// hits fall through to the next one. limit <= 0 means 1.
func (g *Gateway) Search(ctx context.Context, query string, limit int) SearchResult {
	if limit <= 0 {
		limit = 1
	}
	start := time.Now()
	res := g.search(ctx, query, limit)

	name := "none"
	if g.provider != nil {
		name = g.provider.Name()
	}
	if g.recorder != nil {
		g.recorder.RecordSearch(name, res.Status.String(), time.Since(start))
	}

	switch res.Status {
	case StatusFailed:
		g.logger.Warn("web search failed",
			zap.String("provider", name),
			zap.String("query", query),
			zap.Error(res.Err))
	default:
		g.logger.Info("web search completed",
			zap.String("provider", name),
			zap.String("query", query),
			zap.String("status", res.Status.String()),
			zap.Duration("duration", time.Since(start)))
	}
	return res
}

func (g *Gateway) search(ctx context.Context, query string, limit int) (res SearchResult) {
	if strings.TrimSpace(query) == "" {
		return failed(errors.New("query is required"))
	}
	if g.provider == nil {
		return failed(errors.New("web search provider not configured"))
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return failed(fmt.Errorf("rate limiter: %w", err))
		}
	}
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	session, err := g.provider.Open(ctx)
	if err != nil {
		return failed(fmt.Errorf("open session: %w", err))
	}
	defer func() {
		if r := recover(); r != nil {
			res = failed(fmt.Errorf("search panicked: %v", r))
		}
		if cerr := session.Close(); cerr != nil {
			g.logger.Debug("session close failed", zap.Error(cerr))
		}
	}()

	fetch := limit + hitHeadroom
	hits, err := session.Search(ctx, query, Options{MaxResults: fetch, Region: g.cfg.Region})
	if err != nil {
		return failed(err)
	}
	if len(hits) > fetch {
		hits = hits[:fetch]
	}
	for _, h := range hits {
		body := strings.TrimSpace(h.Body)
		if body == "" {
			continue
		}
		if types.IsErrorOutput(body) {
			g.logger.Warn("dropping hit that starts with the error marker", zap.String("url", h.URL))
			continue
		}
		return SearchResult{Status: StatusFound, Snippet: body}
	}
	return SearchResult{Status: StatusNoResult}
}

func failed(err error) SearchResult {
	return SearchResult{
		Status: StatusFailed,
		Err:    types.NewError(types.ErrSearchFailed, "web search failed").WithCause(err),
	}
}

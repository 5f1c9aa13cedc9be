package xkcd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	errs "xkcdfetch/pkg/errors"
	"xkcdfetch/pkg/logger"
	"xkcdfetch/pkg/metrics"
	"xkcdfetch/pkg/retry"
)

// Resource kinds, used as metric labels and in log fields.
const (
	KindArchive = "archive"
	KindPage    = "page"
	KindImage   = "image"
)

const (
	ctxBody   = "body"
	ctxStatus = "status"
	ctxStart  = "start"
	ctxKind   = "kind"
)

// Options configures a Client.
type Options struct {
	Endpoints  Endpoints
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// Transport replaces the default HTTP transport, mainly for tests.
	Transport http.RoundTripper
	Metrics   *metrics.Metrics
	Logger    logger.Logger
}

// Client fetches raw archive pages, comic pages and images. It issues one
// request at a time; the collector runs synchronously.
type Client struct {
	collector *colly.Collector
	endpoints Endpoints
	opts      Options
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewClient builds a colly-backed client.
func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Endpoints == (Endpoints{}) {
		opts.Endpoints = DefaultEndpoints()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	collectorOpts := []colly.CollectorOption{colly.AllowURLRevisit(), colly.MaxBodySize(0)}
	if opts.UserAgent != "" {
		collectorOpts = append(collectorOpts, colly.UserAgent(opts.UserAgent))
	}
	collector := colly.NewCollector(collectorOpts...)
	collector.SetRequestTimeout(opts.Timeout)

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}
	collector.WithTransport(transport)

	c := &Client{
		collector: collector,
		endpoints: opts.Endpoints,
		opts:      opts,
		metrics:   opts.Metrics,
		logger:    log.WithField("component", "xkcd_client"),
	}
	c.configureHandlers()
	return c
}

func (c *Client) configureHandlers() {
	c.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(ctxStart, time.Now())
		c.metrics.IncRequest(r.Ctx.Get(ctxKind))
	})

	c.collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxBody, r.Body)
		r.Ctx.Put(ctxStatus, r.StatusCode)
		c.observe(r)
	})

	c.collector.OnError(func(r *colly.Response, err error) {
		if r == nil || r.Ctx == nil {
			return
		}
		r.Ctx.Put(ctxStatus, r.StatusCode)
		c.observe(r)
	})
}

func (c *Client) observe(r *colly.Response) {
	kind := r.Ctx.Get(ctxKind)
	start, ok := r.Ctx.GetAny(ctxStart).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	c.metrics.ObserveDuration(kind, elapsed)

	url := ""
	if r.Request != nil && r.Request.URL != nil {
		url = r.Request.URL.String()
	}
	logger.LogRequest(c.logger, http.MethodGet, url, r.StatusCode, elapsed)
}

// FetchArchive downloads the archive listing.
func (c *Client) FetchArchive(ctx context.Context) ([]byte, error) {
	return c.get(ctx, KindArchive, c.endpoints.ArchiveURL())
}

// FetchComicPage downloads the page of one comic. A 404 yields a not-found
// error.
func (c *Client) FetchComicPage(ctx context.Context, number int) ([]byte, error) {
	return c.get(ctx, KindPage, c.endpoints.ComicURL(number))
}

// FetchImage downloads an image by file name.
func (c *Client) FetchImage(ctx context.Context, name string) ([]byte, error) {
	return c.get(ctx, KindImage, c.endpoints.ImageURL(name))
}

// get performs the request with the configured retry policy. The context
// only cancels waits between attempts; a request in flight runs to completion
// or to its timeout.
func (c *Client) get(ctx context.Context, kind, url string) ([]byte, error) {
	cfg := retry.FromRetries("fetch "+kind, c.opts.MaxRetries, c.opts.RetryDelay, c.logger)
	cfg.OnRetry = func(int, error, time.Duration) { c.metrics.IncRetries() }

	return retry.DoWithResult(ctx, func() ([]byte, error) {
		return c.do(kind, url)
	}, cfg)
}

func (c *Client) do(kind, url string) ([]byte, error) {
	reqCtx := colly.NewContext()
	reqCtx.Put(ctxKind, kind)

	err := c.collector.Request(http.MethodGet, url, nil, reqCtx, nil)
	status, _ := reqCtx.GetAny(ctxStatus).(int)

	if classified := errs.Classify(err, status); classified != nil {
		classified.Message = fmt.Sprintf("GET %s: %s", url, classified.Message)
		c.metrics.IncError(string(classified.Type))
		return nil, classified
	}

	body, _ := reqCtx.GetAny(ctxBody).([]byte)
	return body, nil
}

package scraper

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"xkcdfetch/pkg/comic"
	errs "xkcdfetch/pkg/errors"
	"xkcdfetch/pkg/logger"
	"xkcdfetch/pkg/metrics"
	"xkcdfetch/pkg/ratelimit"
	"xkcdfetch/pkg/xkcd"
)

const defaultNotFoundCacheSize = 128

// Options wires the collaborators of a Scraper. Client, Images and Limiter are
// required.
type Options struct {
	Client            Client
	Extractor         Extractor
	Images            ImageStore
	Limiter           ratelimit.Limiter
	Progress          Progress
	Metrics           *metrics.Metrics
	Logger            logger.Logger
	NotFoundCacheSize int
}

// Scraper resolves requested comic numbers against the collection, going to
// the network only for what is missing.
type Scraper struct {
	archive  *ArchiveScraper
	comics   *ComicScraper
	metrics  *metrics.Metrics
	logger   logger.Logger
	notFound *lru.Cache[int, struct{}]

	// archiveFetched is set once the archive has been merged during this run.
	archiveFetched bool
}

// New creates a new Scraper
func New(opts Options) (*Scraper, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("scraper: client is required")
	}
	if opts.Images == nil {
		return nil, fmt.Errorf("scraper: image store is required")
	}
	if opts.Limiter == nil {
		return nil, fmt.Errorf("scraper: limiter is required")
	}
	if opts.Extractor == nil {
		opts.Extractor = xkcd.PageLayout{}
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	size := opts.NotFoundCacheSize
	if size <= 0 {
		size = defaultNotFoundCacheSize
	}
	notFound, err := lru.New[int, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("scraper: create not-found cache: %w", err)
	}

	log := opts.Logger.WithField("component", "scraper")
	return &Scraper{
		archive: &ArchiveScraper{
			client:    opts.Client,
			extractor: opts.Extractor,
			limiter:   opts.Limiter,
			progress:  opts.Progress,
			metrics:   opts.Metrics,
			logger:    log.WithField("stage", "archive"),
		},
		comics: &ComicScraper{
			client:    opts.Client,
			extractor: opts.Extractor,
			images:    opts.Images,
			limiter:   opts.Limiter,
			progress:  opts.Progress,
			metrics:   opts.Metrics,
			logger:    log.WithField("stage", "comic"),
		},
		metrics:  opts.Metrics,
		logger:   log,
		notFound: notFound,
	}, nil
}

// Fetch returns comic n, downloading whatever the collection lacks. Numbers
// absent from the archive and comics without a usable page yield a not_found
// error and are remembered for the rest of the run.
func (s *Scraper) Fetch(ctx context.Context, coll comic.Collection, n int) (*comic.Comic, error) {
	if s.notFound.Contains(n) {
		return nil, errs.NotFound("comic %d does not exist", n)
	}

	if _, ok := coll[n]; !ok && !s.archiveFetched {
		if err := s.refresh(ctx, coll); err != nil {
			return nil, err
		}
	}

	record, ok := coll[n]
	if !ok {
		s.rememberNotFound(n)
		return nil, errs.NotFound("comic %d does not exist", n)
	}

	if record.HasDetail() {
		s.metrics.IncCacheHit()
		s.logger.DebugWithFields("Cache hit", map[string]interface{}{"number": n})
		return record, nil
	}

	if err := s.comics.FetchDetail(ctx, coll, n); err != nil {
		if errs.IsNotFound(err) {
			s.rememberNotFound(n)
		}
		return nil, err
	}
	return record, nil
}

// CacheAll refreshes the archive and fetches every known comic in ascending
// order. Comics without a usable page are skipped. It stops between comics
// once ctx is cancelled.
func (s *Scraper) CacheAll(ctx context.Context, coll comic.Collection) error {
	if err := s.refresh(ctx, coll); err != nil {
		return err
	}
	for _, n := range coll.Numbers() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.Fetch(ctx, coll, n); err != nil {
			if errs.IsNotFound(err) {
				s.skip(n, err)
				continue
			}
			return err
		}
	}
	return nil
}

// FetchMany resolves numbers in the order given and returns the records found.
// Missing comics are skipped with a warning.
func (s *Scraper) FetchMany(ctx context.Context, coll comic.Collection, numbers []int) ([]*comic.Comic, error) {
	found := make([]*comic.Comic, 0, len(numbers))
	for _, n := range numbers {
		if ctx.Err() != nil {
			return found, ctx.Err()
		}
		record, err := s.Fetch(ctx, coll, n)
		if err != nil {
			if errs.IsNotFound(err) {
				s.skip(n, err)
				continue
			}
			return found, err
		}
		found = append(found, record)
	}
	return found, nil
}

// FetchLatest refreshes the archive unless that already happened during this
// run and fetches the highest numbered comic.
func (s *Scraper) FetchLatest(ctx context.Context, coll comic.Collection) (*comic.Comic, error) {
	if !s.archiveFetched {
		if err := s.refresh(ctx, coll); err != nil {
			return nil, err
		}
	}
	latest, ok := coll.Latest()
	if !ok {
		return nil, errs.NotFound("archive lists no comics")
	}
	return s.Fetch(ctx, coll, latest)
}

func (s *Scraper) refresh(ctx context.Context, coll comic.Collection) error {
	if _, err := s.archive.Refresh(ctx, coll); err != nil {
		return err
	}
	s.archiveFetched = true
	return nil
}

func (s *Scraper) rememberNotFound(n int) {
	s.notFound.Add(n, struct{}{})
	s.metrics.IncNotFound()
}

func (s *Scraper) skip(n int, err error) {
	s.logger.WarnWithFields("Skipping comic", map[string]interface{}{
		"number": n,
		"error":  err.Error(),
	})
}

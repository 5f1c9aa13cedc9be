package scraper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"xkcdfetch/pkg/comic"
	errs "xkcdfetch/pkg/errors"
)

// Request describes one invocation of the fetcher.
type Request struct {
	// CacheAll fetches every comic listed in the archive before anything else.
	CacheAll bool
	// Numbers are the comics to print, in order. Empty means the latest comic.
	Numbers []int
}

// Run loads the collection, resolves req and writes the requested records to
// out. Once the collection is loaded it is saved exactly once before Run
// returns, whatever the outcome. Nothing is written to out when ctx is
// cancelled; Run then returns ctx.Err().
func (s *Scraper) Run(ctx context.Context, store Store, req Request, out io.Writer) (err error) {
	coll, err := store.Load()
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	s.logger.InfoWithFields("Run started", map[string]interface{}{
		"cache_all": req.CacheAll,
		"requested": len(req.Numbers),
		"cached":    len(coll),
	})

	defer func() {
		if saveErr := store.Save(coll); saveErr != nil {
			err = errors.Join(err, fmt.Errorf("save cache: %w", saveErr))
			return
		}
		s.logger.DebugWithFields("Cache saved", map[string]interface{}{"records": len(coll)})
	}()

	records, err := s.resolve(ctx, coll, req)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	w := bufio.NewWriter(out)
	for _, record := range records {
		if err := comic.WriteBlock(w, record); err != nil {
			return fmt.Errorf("write comic %d: %w", record.Number, err)
		}
	}
	return w.Flush()
}

func (s *Scraper) resolve(ctx context.Context, coll comic.Collection, req Request) ([]*comic.Comic, error) {
	if req.CacheAll {
		if err := s.CacheAll(ctx, coll); err != nil {
			return nil, err
		}
	}

	if len(req.Numbers) > 0 {
		return s.FetchMany(ctx, coll, req.Numbers)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	latest, err := s.FetchLatest(ctx, coll)
	if err != nil {
		if errs.IsNotFound(err) {
			s.logger.WarnWithFields("Latest comic unavailable", map[string]interface{}{"error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return []*comic.Comic{latest}, nil
}

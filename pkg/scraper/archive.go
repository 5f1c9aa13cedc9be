package scraper

import (
	"context"
	"fmt"

	"xkcdfetch/pkg/comic"
	errs "xkcdfetch/pkg/errors"
	"xkcdfetch/pkg/logger"
	"xkcdfetch/pkg/metrics"
	"xkcdfetch/pkg/ratelimit"
	"xkcdfetch/pkg/xkcd"
)

// ArchiveScraper discovers comic numbers from the archive listing.
type ArchiveScraper struct {
	client    Client
	extractor Extractor
	limiter   ratelimit.Limiter
	progress  Progress
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// Refresh downloads the archive once and merges it into coll. It returns the
// number of placeholders inserted.
func (a *ArchiveScraper) Refresh(ctx context.Context, coll comic.Collection) (int, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	a.progress.ArchiveStarted()

	page, err := a.client.FetchArchive(ctx)
	if err != nil {
		return 0, networkError(err, "download comic list")
	}

	entries := a.extractor.ExtractArchive(page)
	inserted := Merge(coll, entries)
	a.metrics.AddArchiveInserted(inserted)

	a.logger.InfoWithFields("Archive merged", map[string]interface{}{
		"entries":  len(entries),
		"inserted": inserted,
		"known":    len(coll),
	})
	return inserted, nil
}

// Merge inserts a placeholder for every entry whose number is not yet known.
// Existing records are never touched, so merging is idempotent.
func Merge(coll comic.Collection, entries []xkcd.ArchiveEntry) int {
	inserted := 0
	for _, e := range entries {
		if e.Number <= 0 {
			continue
		}
		placeholder := &comic.Comic{
			Number: e.Number,
			Title:  comic.SingleLine(e.Title),
			Date:   comic.SingleLine(e.Date),
		}
		if coll.Insert(placeholder) {
			inserted++
		}
	}
	return inserted
}

// networkError keeps errors of the network family as they are and reclassifies
// anything else coming from the transport, a 404 included.
func networkError(err error, format string, args ...interface{}) error {
	if errs.IsNetwork(err) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
	}
	return errs.Wrap(errs.ErrorTypeNetwork, err, format, args...)
}

package scraper

import (
	"context"
	"fmt"

	"xkcdfetch/pkg/comic"
	errs "xkcdfetch/pkg/errors"
	"xkcdfetch/pkg/logger"
	"xkcdfetch/pkg/metrics"
	"xkcdfetch/pkg/ratelimit"
)

// ComicScraper fills in a single placeholder from its comic page and makes
// sure the image is on disk.
type ComicScraper struct {
	client    Client
	extractor Extractor
	images    ImageStore
	limiter   ratelimit.Limiter
	progress  Progress
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// FetchDetail downloads the page of comic n and completes the record in coll.
// The record is left untouched unless the image has been stored.
func (cs *ComicScraper) FetchDetail(ctx context.Context, coll comic.Collection, n int) error {
	record, ok := coll[n]
	if !ok {
		return errs.NotFound("comic %d is not in the collection", n)
	}

	if err := cs.limiter.Wait(ctx); err != nil {
		return err
	}
	cs.progress.ComicStarted(n)

	page, err := cs.client.FetchComicPage(ctx, n)
	if err != nil {
		if errs.IsNotFound(err) {
			return errs.Wrap(errs.ErrorTypeNotFound, err, "comic %d has no page", n)
		}
		return networkError(err, "download comic %d", n)
	}

	detail, ok := cs.extractor.ExtractDetail(page)
	if !ok {
		return errs.NotFound("comic %d has no usable image", n)
	}
	if detail.Number != n {
		return errs.Consistency("requested comic %d but page is comic %d", n, detail.Number)
	}

	log := cs.logger.WithFields(map[string]interface{}{
		"number": n,
		"image":  detail.ImageName,
	})

	if !cs.images.HasImage(detail.ImageName) {
		data, err := cs.client.FetchImage(ctx, detail.ImageName)
		if err != nil {
			if errs.IsNotFound(err) {
				return errs.Wrap(errs.ErrorTypeNetwork, err, "download image of comic %d", n)
			}
			return networkError(err, "download image of comic %d", n)
		}
		if err := cs.images.SaveImage(detail.ImageName, data); err != nil {
			return fmt.Errorf("store image of comic %d: %w", n, err)
		}
		cs.metrics.IncImageSaved()
		log.DebugWithFields("Image stored", map[string]interface{}{"bytes": len(data)})
	} else {
		log.Debug("Image already cached")
	}

	record.ImageName = detail.ImageName
	record.TitleText = comic.SingleLine(detail.TitleText)
	if detail.HasTranscript {
		record.Transcript = detail.Transcript
	}
	cs.metrics.IncDetail()
	log.Info("Comic detail fetched")
	return nil
}

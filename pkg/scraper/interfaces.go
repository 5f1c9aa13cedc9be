package scraper

import (
	"context"

	"xkcdfetch/pkg/comic"
	"xkcdfetch/pkg/xkcd"
)

// Client defines the network operations the scrapers need
type Client interface {
	FetchArchive(ctx context.Context) ([]byte, error)
	FetchComicPage(ctx context.Context, number int) ([]byte, error)
	FetchImage(ctx context.Context, name string) ([]byte, error)
}

// Extractor turns raw pages into archive entries and comic details
type Extractor interface {
	ExtractArchive(page []byte) []xkcd.ArchiveEntry
	ExtractDetail(page []byte) (xkcd.Detail, bool)
}

// Store loads and persists the whole collection
type Store interface {
	Load() (comic.Collection, error)
	Save(coll comic.Collection) error
}

// ImageStore tracks downloaded images
type ImageStore interface {
	HasImage(name string) bool
	SaveImage(name string, data []byte) error
}

// Progress receives user-facing progress events
type Progress interface {
	ArchiveStarted()
	ComicStarted(number int)
}

type nopProgress struct{}

func (nopProgress) ArchiveStarted()  {}
func (nopProgress) ComicStarted(int) {}

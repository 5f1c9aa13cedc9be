package xkcd

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the default comic site
	BaseURL = "https://xkcd.com"

	// ImageBaseURL is the default location of comic images
	ImageBaseURL = "https://imgs.xkcd.com/comics"

	// ArchiveEndpoint lists every published comic
	ArchiveEndpoint = "/archive/"
)

// Endpoints builds request URLs against configurable origins.
type Endpoints struct {
	Base  string
	Image string
}

// DefaultEndpoints returns the public site origins.
func DefaultEndpoints() Endpoints {
	return Endpoints{Base: BaseURL, Image: ImageBaseURL}
}

// ArchiveURL returns the archive listing URL.
func (e Endpoints) ArchiveURL() string {
	return strings.TrimSuffix(e.Base, "/") + ArchiveEndpoint
}

// ComicURL returns the page URL of one comic.
func (e Endpoints) ComicURL(number int) string {
	return fmt.Sprintf("%s/%d/", strings.TrimSuffix(e.Base, "/"), number)
}

// ImageURL returns the download URL of an image file name.
func (e Endpoints) ImageURL(name string) string {
	return strings.TrimSuffix(e.Image, "/") + "/" + url.PathEscape(name)
}

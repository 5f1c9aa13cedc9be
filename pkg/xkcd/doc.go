// Package xkcd talks to the comic site.
//
// Client fetches the archive listing, comic pages and images through a
// synchronous colly collector with a per-request timeout, classifying every
// failure into the error taxonomy of package errors. PageLayout extracts
// archive entries and comic details from the raw markup with patterns anchored
// on the site's layout.
//
// Usage:
//
//	client := xkcd.NewClient(xkcd.Options{
//	    Endpoints: xkcd.DefaultEndpoints(),
//	    Timeout:   30 * time.Second,
//	    Logger:    log,
//	})
//	page, err := client.FetchComicPage(ctx, 614)
//	if err != nil {
//	    return err
//	}
//	detail, ok := xkcd.PageLayout{}.ExtractDetail(page)
package xkcd

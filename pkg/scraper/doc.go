// Package scraper orchestrates fetching comics into the local cache.
//
// The Scraper resolves each requested number against the loaded collection
// and only goes to the network for what is missing:
//
//   - An unknown number triggers one archive refresh per run. The
//     ArchiveScraper merges new numbers as placeholders and never overwrites
//     existing records.
//   - A placeholder is completed by the ComicScraper, which downloads the comic
//     page and then the image unless it is already on disk.
//   - A complete record is returned as it is.
//
// Every network call passes through a single rate limiter and calls are
// strictly sequential. Batch operations poll the context between comics, so a
// cancelled run finishes the comic in progress and stops. Run saves the
// collection exactly once after it has been loaded, on every exit path.
//
// Usage:
//
//	s, err := scraper.New(scraper.Options{
//	    Client:   client,
//	    Images:   store,
//	    Limiter:  ratelimit.NewDelayLimiter(time.Second),
//	    Progress: reporter,
//	    Logger:   log,
//	})
//	if err != nil {
//	    return err
//	}
//	err = s.Run(ctx, store, scraper.Request{Numbers: []int{614}}, os.Stdout)
package scraper

package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const interruptNotice = "Received interrupt, stopping and cleaning up."

// Reporter prints progress messages to the diagnostic stream and keeps a
// small tally of the run. It is safe for use from the signal watcher.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	quiet   bool
	palette Palette

	archiveFetches int
	comicFetches   int
	startTime      time.Time
	interrupted    bool
}

// Stats summarises a run.
type Stats struct {
	ArchiveFetches int
	ComicFetches   int
	Elapsed        time.Duration
	Interrupted    bool
}

// NewReporter creates a Reporter writing to out. Colour is used only when out
// is a terminal.
func NewReporter(out io.Writer, quiet bool) *Reporter {
	return &Reporter{
		out:       out,
		quiet:     quiet,
		palette:   NewPalette(IsTerminal(out)),
		startTime: time.Now(),
	}
}

// ArchiveStarted announces an archive download.
func (r *Reporter) ArchiveStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.archiveFetches++
	r.printf("%s\n", r.palette.Cyan("Downloading comic list"))
}

// ComicStarted announces the download of comic n.
func (r *Reporter) ComicStarted(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.comicFetches++
	r.printf("%s %s\n", r.palette.Cyan("Downloading comic"), r.palette.Yellow(fmt.Sprint(n)))
}

// Interrupted prints the interrupt notice once, even in quiet mode.
func (r *Reporter) Interrupted() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.interrupted {
		return
	}
	r.interrupted = true
	fmt.Fprintln(r.out, r.palette.Red(interruptNotice))
}

// Stats returns the tally so far.
func (r *Reporter) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Stats{
		ArchiveFetches: r.archiveFetches,
		ComicFetches:   r.comicFetches,
		Elapsed:        time.Since(r.startTime),
		Interrupted:    r.interrupted,
	}
}

func (r *Reporter) printf(format string, args ...interface{}) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, format, args...)
}

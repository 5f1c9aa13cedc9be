package xkcd

import (
	"html"
	"regexp"
	"strconv"
)

var (
	imagePattern      = regexp.MustCompile(`<img src="(?:https?:)?//imgs\.xkcd\.com/comics/([^"\s/]+)" title="([^"\n]*)" alt="[^"\n]*"`)
	permalinkPattern  = regexp.MustCompile(`Permanent link to this comic: (?:<a href="[^"]*">)?(?:https?:)?//(?:www\.)?xkcd\.com/(\d+)/?`)
	transcriptPattern = regexp.MustCompile(`(?s)<div id="transcript" style="display: none">(.*?)</div>`)
	archivePattern    = regexp.MustCompile(`<a href="/(\d+)/" title="(\d{4}-\d{1,2}-\d{1,2})">([^\n]*?)</a><br\s*/?>`)
	entityPattern     = regexp.MustCompile(`&#?\w+;`)
)

// PageLayout extracts records from the site's markup. Extraction is anchored
// on fixed patterns of the current page layout, not a general HTML parse.
type PageLayout struct{}

// ExtractArchive returns every archive entry in document order. Titles are
// decoded; dates are kept verbatim.
func (PageLayout) ExtractArchive(page []byte) []ArchiveEntry {
	matches := archivePattern.FindAllSubmatch(page, -1)
	entries := make([]ArchiveEntry, 0, len(matches))
	for _, m := range matches {
		number, err := strconv.Atoi(string(m[1]))
		if err != nil || number <= 0 {
			continue
		}
		entries = append(entries, ArchiveEntry{
			Number: number,
			Date:   string(m[2]),
			Title:  Unescape(string(m[3])),
		})
	}
	return entries
}

// ExtractDetail pulls the image, title text, permanent link number and
// transcript out of a comic page. ok is false when the image element or the
// permanent link is missing.
func (PageLayout) ExtractDetail(page []byte) (Detail, bool) {
	img := imagePattern.FindSubmatch(page)
	link := permalinkPattern.FindSubmatch(page)
	if img == nil || link == nil {
		return Detail{}, false
	}

	number, err := strconv.Atoi(string(link[1]))
	if err != nil {
		return Detail{}, false
	}

	d := Detail{
		Number:    number,
		ImageName: Unescape(string(img[1])),
		TitleText: Unescape(string(img[2])),
	}
	if t := transcriptPattern.FindSubmatch(page); t != nil {
		d.Transcript = Unescape(string(t[1]))
		d.HasTranscript = true
	}
	return d, true
}

// Unescape decodes numeric (&#NN; and &#xHH;) and named character references.
// Only references terminated by ';' are decoded.
func Unescape(s string) string {
	return entityPattern.ReplaceAllStringFunc(s, html.UnescapeString)
}

// Package comic defines the cached comic record and the text block format
// shared by the cache file and the command output.
package comic

import (
	"sort"
	"strings"
)

// Comic is one cached record. An empty ImageName marks a placeholder that only
// carries what the archive listing knows.
type Comic struct {
	Number     int
	Title      string
	ImageName  string
	TitleText  string
	Date       string
	Transcript string
}

// HasDetail reports whether the comic page has been scraped for this record.
func (c *Comic) HasDetail() bool {
	return c.ImageName != ""
}

// Collection maps comic numbers to records.
type Collection map[int]*Comic

// Numbers returns the keys in ascending order.
func (c Collection) Numbers() []int {
	numbers := make([]int, 0, len(c))
	for n := range c {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// Latest returns the highest known number.
func (c Collection) Latest() (int, bool) {
	latest, ok := 0, false
	for n := range c {
		if !ok || n > latest {
			latest, ok = n, true
		}
	}
	return latest, ok
}

// Insert adds the record only when its number is not yet a key.
func (c Collection) Insert(record *Comic) bool {
	if _, exists := c[record.Number]; exists {
		return false
	}
	c[record.Number] = record
	return true
}

// SingleLine collapses line breaks so a value fits a one-line field.
func SingleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}

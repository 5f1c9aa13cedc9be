package comic

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	errs "xkcdfetch/pkg/errors"
)

// Transcript section sentinels.
const (
	TranscriptStart = "<transcript>"
	TranscriptEnd   = "</transcript>"
)

// WriteBlock writes one record in the block format: number, title, image name,
// title text, date, the transcript between sentinels and a blank separator.
func WriteBlock(w io.Writer, c *Comic) error {
	_, err := fmt.Fprintf(w, "%d\n%s\n%s\n%s\n%s\n%s\n%s\n%s\n\n",
		c.Number,
		c.Title,
		c.ImageName,
		c.TitleText,
		c.Date,
		TranscriptStart,
		c.Transcript,
		TranscriptEnd,
	)
	return err
}

// Encode writes every record of the collection in ascending number order.
func Encode(w io.Writer, coll Collection) error {
	bw := bufio.NewWriter(w)
	for _, n := range coll.Numbers() {
		if err := WriteBlock(bw, coll[n]); err != nil {
			return fmt.Errorf("write comic %d: %w", n, err)
		}
	}
	return bw.Flush()
}

// Decode parses a sequence of blocks. Any structural problem is reported as a
// parsing error carrying the offending line; nothing is returned in that case.
func Decode(r io.Reader) ([]*Comic, error) {
	lr := &lineReader{r: bufio.NewReader(r)}
	seen := make(map[int]bool)
	var comics []*Comic

	for {
		line, ok, err := lr.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return comics, nil
		}

		c, err := decodeBlock(lr, line)
		if err != nil {
			return nil, err
		}
		if seen[c.Number] {
			return nil, errs.Parse(lr.line, "duplicate comic number %d", c.Number)
		}
		seen[c.Number] = true
		comics = append(comics, c)
	}
}

func decodeBlock(lr *lineReader, numberLine string) (*Comic, error) {
	number, err := strconv.Atoi(numberLine)
	if err != nil || number <= 0 {
		return nil, errs.Parse(lr.line, "invalid comic number %q", numberLine)
	}

	c := &Comic{Number: number}
	fields := []struct {
		name string
		dst  *string
	}{
		{"title", &c.Title},
		{"image name", &c.ImageName},
		{"title text", &c.TitleText},
		{"date", &c.Date},
	}
	for _, f := range fields {
		if *f.dst, err = lr.required(f.name); err != nil {
			return nil, err
		}
	}

	start, err := lr.required(TranscriptStart)
	if err != nil {
		return nil, err
	}
	if start != TranscriptStart {
		return nil, errs.Parse(lr.line, "expected %q, got %q", TranscriptStart, start)
	}

	var transcript []string
	for {
		line, ok, err := lr.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.Parse(lr.line, "unterminated transcript of comic %d", number)
		}
		if line == TranscriptEnd {
			break
		}
		transcript = append(transcript, line)
	}
	c.Transcript = strings.Join(transcript, "\n")

	// The separator of the last block may be missing at end of file.
	sep, ok, err := lr.next()
	if err != nil {
		return nil, err
	}
	if ok && sep != "" {
		return nil, errs.Parse(lr.line, "expected blank separator after comic %d, got %q", number, sep)
	}

	return c, nil
}

type lineReader struct {
	r    *bufio.Reader
	line int
}

// next returns the next line without its terminator. ok is false at end of input.
func (lr *lineReader) next() (string, bool, error) {
	s, err := lr.r.ReadString('\n')
	if err == io.EOF {
		if s == "" {
			return "", false, nil
		}
		lr.line++
		return strings.TrimSuffix(s, "\r"), true, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read cache: %w", err)
	}
	lr.line++
	return strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r"), true, nil
}

func (lr *lineReader) required(field string) (string, error) {
	s, ok, err := lr.next()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.Parse(lr.line+1, "unexpected end of file, expected %s", field)
	}
	return s, nil
}

package xkcd

// ArchiveEntry is one row of the archive listing.
type ArchiveEntry struct {
	Number int
	Date   string
	Title  string
}

// Detail is what a comic page contributes to a record. Text fields are
// already decoded.
type Detail struct {
	Number        int
	ImageName     string
	TitleText     string
	Transcript    string
	HasTranscript bool
}

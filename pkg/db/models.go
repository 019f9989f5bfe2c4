package db

import "time"

// Publication is one promotion of a candidate collection to its published
// path.
type Publication struct {
	ID          string
	PublishedAt time.Time
	Kind        string
	Path        string
	RecordCount int
	// Digest is the BLAKE3 hash of the promoted file bytes.
	Digest string
}

// PublishedRecord is the digest of one record as of a publication.
type PublishedRecord struct {
	PublicationID string
	Key           string
	Digest        string
}

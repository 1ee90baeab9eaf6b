package domain

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Run records one completed wordlist generation
type Run struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Path      string    `json:"-"`
	Facts     Facts     `json:"facts"`
	Emitted   int       `json:"emitted"`
	Accepted  int       `json:"accepted"`
	Rejected  int       `json:"rejected"`
	LineCount int       `json:"count"`
	Sample    []string  `json:"sample,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRun creates a run with a fresh identifier and timestamp
func NewRun(filename, path string, facts Facts) *Run {
	return &Run{
		ID:        uuid.New().String(),
		Filename:  filename,
		Path:      path,
		Facts:     facts.Clone(),
		CreatedAt: time.Now().UTC(),
	}
}

// DownloadLink returns the static URL the wordlist file is served under
func (r *Run) DownloadLink() string {
	return "/static/wordlists/" + url.PathEscape(r.Filename)
}

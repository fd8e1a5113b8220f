package model

import "time"

// Progress is a read-only snapshot of a running crawl.
// It is safe to hand to observers; it shares no state with the session.
type Progress struct {
	// State is the session state at snapshot time.
	State State `json:"state"`

	// Discovered is the number of unique URLs ever accepted into the
	// visited registry, including pre-seeded exclusions.
	Discovered int `json:"discovered"`

	// Analyzed is the number of pages emitted so far.
	Analyzed int `json:"analyzed"`

	// Target is the page budget for the session.
	Target int `json:"target"`
}

// Summary describes a finished crawl session.
type Summary struct {
	// SeedURL is the URL the crawl started from.
	SeedURL string `json:"seed_url"`

	// SiteDomain is the hostname used for the same-domain filter.
	SiteDomain string `json:"site_domain"`

	// State is the terminal state, StateCompleted or StateFailed.
	State State `json:"state"`

	// Analyzed is the number of pages in the result set.
	Analyzed int `json:"analyzed"`

	// Discovered is the number of unique URLs ever registered.
	Discovered int `json:"discovered"`

	// Elapsed is the wall-clock duration of the crawl.
	Elapsed time.Duration `json:"elapsed"`

	// ErrorMessage is the failure reason when State is StateFailed.
	ErrorMessage string `json:"error_message,omitempty"`
}

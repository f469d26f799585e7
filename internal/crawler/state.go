package crawler

// State is a crawl state.
type State int

const (
	// StateInit is the state before the listing is loaded.
	StateInit State = iota
	// StateLoaded means the listing table is present.
	StateLoaded
	// StateSizeConfigured means the page-size step has run.
	StateSizeConfigured
	// StateViewConfigured means the view step has run.
	StateViewConfigured
	// StateScrapingPage means a page is being extracted.
	StateScrapingPage
	// StateDone is the successful terminal state.
	StateDone
	// StateFailed is the unsuccessful terminal state.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoaded:
		return "loaded"
	case StateSizeConfigured:
		return "size_configured"
	case StateViewConfigured:
		return "view_configured"
	case StateScrapingPage:
		return "scraping_page"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Done or Failed.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

package source

import "context"

// TrendingItem is one raw candidate returned by a trending source.
type TrendingItem struct {
	ID       string `json:"id"`   // Source-assigned identifier
	Name     string `json:"name"` // Display name, becomes the meme title
	URL      string `json:"url"`  // Image URL
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"` // Number of caption boxes on the template
}

// TrendingSource defines the interface for providers of popular memes.
type TrendingSource interface {
	// GetSourceID returns the unique identifier for this source.
	// Parameters: none.
	// Returns:
	//   - string: stable source identifier.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	// Parameters: none.
	// Returns:
	//   - string: display-friendly source name.
	GetDisplayName() string

	// FetchTrending fetches the current bounded list of trending items.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	// Returns:
	//   - []TrendingItem: candidate items in source order.
	//   - error: non-nil if the source is unreachable or its payload is invalid.
	FetchTrending(ctx context.Context) ([]TrendingItem, error)
}

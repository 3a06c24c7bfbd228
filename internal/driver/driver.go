package driver

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups when no element matches. Callers decide
// whether absence is an error or a branch.
var ErrNotFound = errors.New("element not found")

// Driver is the blocking interface to one interactive page session. The
// session is a single mutable resource: no concurrent access, every call a
// suspension point.
type Driver interface {
	// Navigate loads the given URL and waits for the page load event
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the page's current address
	CurrentURL(ctx context.Context) (string, error)

	// PageHTML returns the full HTML of the current page
	PageHTML(ctx context.Context) (string, error)

	// Find returns the first element matching the selector, or ErrNotFound.
	// It does not wait.
	Find(ctx context.Context, selector string) (Element, error)

	// FindAll returns every element matching the selector, possibly none
	FindAll(ctx context.Context, selector string) ([]Element, error)

	// WaitVisible polls until an element matching the selector is visible,
	// or the timeout elapses (ErrNotFound)
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) (Element, error)

	// Scroll scrolls the page vertically by deltaY pixels
	Scroll(ctx context.Context, deltaY float64) error

	// Close tears down the session and its browser resources
	Close() error
}

// Element is one located page element
type Element interface {
	Click(ctx context.Context) error
	// Input types text into the element
	Input(ctx context.Context, text string) error
	// Clear removes the element's current value
	Clear(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	// Attribute returns the named attribute, or "" when absent
	Attribute(ctx context.Context, name string) (string, error)
	TagName(ctx context.Context) (string, error)
	Visible(ctx context.Context) (bool, error)
	// Options returns the labels of a select element's options
	Options(ctx context.Context) ([]string, error)
	// SelectOption selects the option whose label matches text
	SelectOption(ctx context.Context, text string) error
	// Upload attaches a local file to a file input
	Upload(ctx context.Context, path string) error
	// Find scopes a lookup to this element's subtree
	Find(ctx context.Context, selector string) (Element, error)
	FindAll(ctx context.Context, selector string) ([]Element, error)
}

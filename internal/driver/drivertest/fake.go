// Package drivertest provides an in-memory Driver for exercising the engine
// without a browser. Tests register elements under literal selector strings
// and mutate the fake DOM from click hooks to script page transitions.
package drivertest

import (
	"context"
	"sync"
	"time"

	"autoapply/internal/driver"
)

// FakeDriver is a scriptable in-memory page session
type FakeDriver struct {
	mu sync.Mutex

	// HTML maps a URL to the page source PageHTML returns for it
	HTML map[string]string
	// Selectors is the live DOM: selector string to matching elements
	Selectors map[string][]*FakeElement
	// NavErr fails Navigate for specific URLs
	NavErr map[string]error
	// OnNavigate observes every successful navigation
	OnNavigate func(url string)

	URL         string
	NavCount    int
	ScrollCount int
	Closed      bool
}

func New() *FakeDriver {
	return &FakeDriver{
		HTML:      make(map[string]string),
		Selectors: make(map[string][]*FakeElement),
		NavErr:    make(map[string]error),
	}
}

// Set replaces the elements behind a selector
func (d *FakeDriver) Set(selector string, elements ...*FakeElement) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Selectors[selector] = elements
}

// Remove drops a selector from the DOM
func (d *FakeDriver) Remove(selector string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.Selectors, selector)
}

func (d *FakeDriver) Navigate(_ context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.NavErr[url]; err != nil {
		return err
	}
	d.URL = url
	d.NavCount++
	if d.OnNavigate != nil {
		d.OnNavigate(url)
	}
	return nil
}

func (d *FakeDriver) CurrentURL(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.URL, nil
}

func (d *FakeDriver) PageHTML(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.HTML[d.URL], nil
}

func (d *FakeDriver) Find(_ context.Context, selector string) (driver.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	els := d.Selectors[selector]
	if len(els) == 0 {
		return nil, driver.ErrNotFound
	}
	return els[0], nil
}

func (d *FakeDriver) FindAll(_ context.Context, selector string) ([]driver.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	els := d.Selectors[selector]
	out := make([]driver.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

// WaitVisible resolves immediately: the fake DOM has no load latency, so a
// selector is either present and visible or it never will be.
func (d *FakeDriver) WaitVisible(ctx context.Context, selector string, _ time.Duration) (driver.Element, error) {
	el, err := d.Find(ctx, selector)
	if err != nil {
		return nil, err
	}
	if visible, _ := el.Visible(ctx); !visible {
		return nil, driver.ErrNotFound
	}
	return el, nil
}

func (d *FakeDriver) Scroll(context.Context, float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ScrollCount++
	return nil
}

func (d *FakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

// FakeElement is one scriptable DOM element
type FakeElement struct {
	Tag      string
	TextVal  string
	Value    string
	Attrs    map[string]string
	Hidden   bool
	Opts     []string
	Selected string
	Uploaded string
	Clicks   int
	// OnClick runs on every click, typically to mutate the fake DOM
	OnClick func()
	// Children scopes nested lookups, selector string to elements
	Children map[string][]*FakeElement

	ClickErr error
	InputErr error
}

func (e *FakeElement) Click(context.Context) error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicks++
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *FakeElement) Input(_ context.Context, text string) error {
	if e.InputErr != nil {
		return e.InputErr
	}
	e.Value += text
	return nil
}

func (e *FakeElement) Clear(context.Context) error {
	e.Value = ""
	return nil
}

func (e *FakeElement) Text(context.Context) (string, error) {
	return e.TextVal, nil
}

func (e *FakeElement) Attribute(_ context.Context, name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *FakeElement) TagName(context.Context) (string, error) {
	return e.Tag, nil
}

func (e *FakeElement) Visible(context.Context) (bool, error) {
	return !e.Hidden, nil
}

func (e *FakeElement) Options(context.Context) ([]string, error) {
	return e.Opts, nil
}

func (e *FakeElement) SelectOption(_ context.Context, text string) error {
	e.Selected = text
	return nil
}

func (e *FakeElement) Upload(_ context.Context, path string) error {
	e.Uploaded = path
	return nil
}

func (e *FakeElement) Find(_ context.Context, selector string) (driver.Element, error) {
	els := e.Children[selector]
	if len(els) == 0 {
		return nil, driver.ErrNotFound
	}
	return els[0], nil
}

func (e *FakeElement) FindAll(_ context.Context, selector string) ([]driver.Element, error) {
	els := e.Children[selector]
	out := make([]driver.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

package driver

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"autoapply/internal/config"
	"autoapply/internal/logging"
)

// RodDriver drives a single stealth browser session. One applicant profile
// maps to one session; the session is never shared.
type RodDriver struct {
	config   *config.Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   logging.Logger
}

// NewRodDriver launches a browser and opens one stealth page
func NewRodDriver(cfg *config.Config) (*RodDriver, error) {
	logger := logging.GetGlobalLogger()

	l := launcher.New().
		Headless(cfg.Driver.HeadlessMode).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-web-security").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if chromePath := getSystemChromePath(); chromePath != "" {
		l = l.Bin(chromePath)
		logger.Info("Using system Chrome browser", map[string]interface{}{
			"chrome_path": chromePath,
		})
	} else {
		logger.Warn("System Chrome not found, Rod will download browser")
	}

	if cfg.Driver.UserAgent != "" {
		l = l.Set("user-agent", cfg.Driver.UserAgent)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	d := &RodDriver{
		config:   cfg,
		launcher: l,
		browser:  browser,
		logger:   logger,
	}

	page, err := d.createStealthPage()
	if err != nil {
		browser.MustClose()
		l.Cleanup()
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}
	d.page = page

	return d, nil
}

// createStealthPage creates a new page with stealth mode enabled
func (d *RodDriver) createStealthPage() (*rod.Page, error) {
	page, err := stealth.Page(d.browser)
	if err != nil {
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		d.logger.Warn("Failed to set viewport", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if d.config.Driver.UserAgent != "" {
		err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: d.config.Driver.UserAgent,
		})
		if err != nil {
			d.logger.Warn("Failed to set user agent", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	headers := map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Upgrade-Insecure-Requests": "1",
	}

	for name, value := range headers {
		_, err := page.SetExtraHeaders([]string{name, value})
		if err != nil {
			d.logger.Debug("Failed to set header", map[string]interface{}{
				"error":  err.Error(),
				"header": name,
			})
		}
	}

	// Mask the usual automation tells
	err = rod.Try(func() {
		page.MustEval(`() => {
			Object.defineProperty(navigator, 'webdriver', {
				get: () => undefined,
			});
			Object.defineProperty(navigator, 'plugins', {
				get: () => [1, 2, 3, 4, 5],
			});
			Object.defineProperty(navigator, 'languages', {
				get: () => ['en-US', 'en'],
			});
			window.chrome = {
				runtime: {},
			};
		}`)
	})
	if err != nil {
		d.logger.Warn("Failed to inject stealth JavaScript", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return page, nil
}

// Navigate loads the given URL and waits for the page load event
func (d *RodDriver) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, d.config.Target.NavTimeout)
	defer cancel()

	err := rod.Try(func() {
		d.page.Context(navCtx).MustNavigate(url).MustWaitLoad()
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	d.logger.Debug("Successfully navigated to URL", map[string]interface{}{
		"url": url,
	})
	return nil
}

// CurrentURL returns the page's current address
func (d *RodDriver) CurrentURL(ctx context.Context) (string, error) {
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("failed to get page info: %w", err)
	}
	return info.URL, nil
}

// PageHTML returns the full HTML content of the current page
func (d *RodDriver) PageHTML(ctx context.Context) (string, error) {
	html, err := d.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

// Find returns the first matching element without waiting
func (d *RodDriver) Find(ctx context.Context, selector string) (Element, error) {
	el, err := d.page.Context(ctx).Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		return nil, ErrNotFound
	}
	return &rodElement{el: el}, nil
}

// FindAll returns every matching element, possibly none
func (d *RodDriver) FindAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements %q: %w", selector, err)
	}

	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

// WaitVisible polls until a matching element is visible or the timeout elapses
func (d *RodDriver) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	var found Element

	err := PollUntil(ctx, d.config.Target.PollInterval, timeout, func(ctx context.Context) (bool, error) {
		el, err := d.Find(ctx, selector)
		if err != nil {
			return false, nil
		}
		visible, err := el.Visible(ctx)
		if err != nil || !visible {
			return false, nil
		}
		found = el
		return true, nil
	})
	if err != nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// Scroll scrolls the page vertically by deltaY pixels
func (d *RodDriver) Scroll(ctx context.Context, deltaY float64) error {
	err := d.page.Context(ctx).Mouse.Scroll(0, deltaY, 1)
	if err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

// Close tears down the page, browser and launcher
func (d *RodDriver) Close() error {
	err := rod.Try(func() {
		if d.page != nil {
			d.page.MustClose()
		}
		d.browser.MustClose()
	})
	d.launcher.Cleanup()

	d.logger.Debug("Browser session closed")
	if err != nil {
		return fmt.Errorf("failed to close browser session: %w", err)
	}
	return nil
}

// rodElement adapts a rod element to the Element interface
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) Input(ctx context.Context, text string) error {
	return e.el.Context(ctx).Input(text)
}

func (e *rodElement) Clear(ctx context.Context) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Type(input.Backspace)
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *rodElement) Attribute(ctx context.Context, name string) (string, error) {
	attr, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", err
	}
	if attr == nil {
		return "", nil
	}
	return *attr, nil
}

func (e *rodElement) TagName(ctx context.Context) (string, error) {
	obj, err := e.el.Context(ctx).Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return "", err
	}
	return obj.Value.Str(), nil
}

func (e *rodElement) Visible(ctx context.Context) (bool, error) {
	return e.el.Context(ctx).Visible()
}

func (e *rodElement) Options(ctx context.Context) ([]string, error) {
	opts, err := e.el.Context(ctx).Elements("option")
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(opts))
	for _, opt := range opts {
		text, err := opt.Text()
		if err != nil {
			continue
		}
		labels = append(labels, text)
	}
	return labels, nil
}

func (e *rodElement) SelectOption(ctx context.Context, text string) error {
	return e.el.Context(ctx).Select([]string{text}, true, rod.SelectorTypeText)
}

func (e *rodElement) Upload(ctx context.Context, path string) error {
	return e.el.Context(ctx).SetFiles([]string{path})
}

func (e *rodElement) Find(ctx context.Context, selector string) (Element, error) {
	el, err := e.el.Context(ctx).Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		return nil, ErrNotFound
	}
	return &rodElement{el: el}, nil
}

func (e *rodElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}

	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

// getSystemChromePath finds the system-installed Chrome/Chromium browser
func getSystemChromePath() string {
	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		if _, err := os.Stat(chromeBin); err == nil {
			return chromeBin
		}
	}

	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	commonPaths := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/opt/google/chrome/chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

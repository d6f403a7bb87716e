package rag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RenderedFetcher drives a headless browser so JavaScript-heavy pages
// return their hydrated DOM instead of an empty shell. The browser is
// started lazily on first use and reused across fetches.
type RenderedFetcher struct {
	userAgent string
	timeout   time.Duration

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewRenderedFetcher(timeout time.Duration, userAgent string) *RenderedFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &RenderedFetcher{
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// ensureBrowser makes sure the playwright instance and browser are running
func (f *RenderedFetcher) ensureBrowser() (playwright.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	f.pw = pw
	f.browser = browser
	return browser, nil
}

func (f *RenderedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, err := f.ensureBrowser()
	if err != nil {
		return "", err
	}

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String(f.userAgent),
	})
	if err != nil {
		return "", fmt.Errorf("could not create page: %w", err)
	}
	defer page.Close()

	_, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(f.timeout.Milliseconds())),
	})
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("read page content: %w", err)
	}
	return html, nil
}

// Close shuts down the browser and the playwright driver.
func (f *RenderedFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		f.browser.Close()
		f.browser = nil
	}
	if f.pw != nil {
		err := f.pw.Stop()
		f.pw = nil
		return err
	}
	return nil
}

package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// fetchRendered loads the page in headless Chrome so client-side rendered
// content ends up in the returned HTML.
func (f *Fetcher) fetchRendered(ctx context.Context, url string, opts Options) (*Result, error) {
	chromeCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	if opts.Timeout > 0 {
		chromeCtx, cancel = context.WithTimeout(chromeCtx, opts.Timeout)
		defer cancel()
	}

	tasks := []chromedp.Action{}
	if len(opts.Cookies) > 0 {
		tasks = append(tasks, setCookies(opts.Cookies))
	}
	var html string
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.OuterHTML("html", &html),
	)

	if err := chromedp.Run(chromeCtx, tasks...); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	return &Result{HTML: html, URL: url, UsedJS: true}, nil
}

func setCookies(cookies []*http.Cookie) chromedp.Action {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		})
	}
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	})
}

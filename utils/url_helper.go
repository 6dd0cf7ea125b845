package utils

import (
	"context"
	"net/http"
	"time"
)

// ResolveRedirects follows redirects (shortened links, myshopify.com domains
// moved to a custom domain) and returns the final URL.
func ResolveRedirects(ctx context.Context, url, userAgent string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}

	resp, err := do(ctx, client, http.MethodHead, url, userAgent)
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		// Some storefronts reject HEAD; the redirect chain is the same for GET.
		resp, err = do(ctx, client, http.MethodGet, url, userAgent)
		if err != nil {
			return url, err
		}
	}
	defer resp.Body.Close()

	return resp.Request.URL.String(), nil
}

func do(ctx context.Context, client *http.Client, method, url, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return client.Do(req)
}

package context

import (
	"context"
	"net/url"
)

type contextKey string

const keyCurrentURL contextKey = "currentURL"

// CurrentURL returns the URL of the request as received by the server,
// before any mount prefix is stripped.
func CurrentURL(ctx context.Context) *url.URL {
	currentURL, ok := ctx.Value(keyCurrentURL).(*url.URL)
	if !ok {
		return &url.URL{}
	}

	return currentURL
}

func SetCurrentURL(ctx context.Context, u *url.URL) context.Context {
	return context.WithValue(ctx, keyCurrentURL, u)
}

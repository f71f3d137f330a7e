package url

import (
	"net/url"
)

type URL = url.URL

func Mutate(u *url.URL, funcs ...MutationFunc) *url.URL {
	cloned := *u

	for _, fn := range funcs {
		fn(&cloned)
	}

	return &cloned
}

type MutationFunc func(u *url.URL)

// WithValue replaces the query values of the given key.
func WithValue(key string, values ...string) MutationFunc {
	return func(u *url.URL) {
		query := u.Query()
		query.Del(key)

		for _, v := range values {
			query.Add(key, v)
		}

		u.RawQuery = query.Encode()
	}
}

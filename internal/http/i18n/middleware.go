package i18n

import (
	"context"
	"net/http"
)

type Translator interface {
	WithLanguage(ctx context.Context, lang string) context.Context
}

// Middleware attaches the language of the request to its context. The "lang"
// query parameter takes precedence over the Accept-Language header.
func Middleware(translator Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var lang string

			if queryLang := r.URL.Query().Get("lang"); queryLang != "" {
				lang = queryLang
			} else if acceptLanguage := r.Header.Get("Accept-Language"); acceptLanguage != "" {
				lang = acceptLanguage
			}

			ctx := translator.WithLanguage(r.Context(), lang)

			next.ServeHTTP(w, r.WithContext(ctx))
		})

		return http.HandlerFunc(fn)
	}
}

package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/pkg/errors"
	sloghttp "github.com/samber/slog-http"

	httpCtx "github.com/bornholm/fileworks/internal/http/context"
)

type Server struct {
	opts *Options
}

func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := http.Server{
		Addr:    s.opts.Address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		if err := server.Close(); err != nil {
			s.opts.Logger.ErrorContext(ctx, "could not close server", slogx.Error(errors.WithStack(err)))
		}
	}()

	s.opts.Logger.InfoContext(ctx, "http server listening", "address", s.opts.Address)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}

// Handler returns the root handler of the server, with its mounts and
// middlewares.
func (s *Server) Handler() http.Handler {
	mux := &http.ServeMux{}
	for mountpoint, handler := range s.opts.Mounts {
		mount(mux, mountpoint, handler)
	}

	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.opts.Logger.With("component", "http-server"))(handler)

	handler = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := httpCtx.SetCurrentURL(r.Context(), r.URL)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}(handler)

	return handler
}

func mount(mux *http.ServeMux, prefix string, handler http.Handler) {
	trimmed := strings.TrimSuffix(prefix, "/")

	if len(trimmed) > 0 {
		mux.Handle(prefix, http.StripPrefix(trimmed, handler))
	} else {
		mux.Handle(prefix, handler)
	}
}

func NewServer(funcs ...OptionFunc) *Server {
	opts := NewOptions(funcs...)
	return &Server{
		opts: opts,
	}
}

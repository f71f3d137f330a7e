package i18n

import (
	"context"
	"embed"
	"log/slog"

	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/invopop/ctxi18n"
	tr "github.com/invopop/ctxi18n/i18n"
	"github.com/pkg/errors"
)

//go:embed locales/*.yml
var locales embed.FS

func init() {
	if err := ctxi18n.Load(locales); err != nil {
		panic(errors.Wrap(err, "could not load translations"))
	}
}

const DefaultLanguage = "en"

// Translator resolves the language attached to a context and translates
// messages with it. Unknown keys are returned untranslated.
type Translator struct {
	defaultLanguage string
	logger          *slog.Logger
}

func NewTranslator(defaultLanguage string, logger *slog.Logger) *Translator {
	if defaultLanguage == "" {
		defaultLanguage = DefaultLanguage
	}

	return &Translator{
		defaultLanguage: defaultLanguage,
		logger:          logger.With("component", "translator"),
	}
}

// WithLanguage attaches the given language to the context, falling back to
// the default language if it is not available.
func (t *Translator) WithLanguage(ctx context.Context, lang string) context.Context {
	if lang == "" {
		lang = t.defaultLanguage
	}

	localized, err := ctxi18n.WithLocale(ctx, lang)
	if err == nil {
		return localized
	}

	t.logger.WarnContext(ctx, "could not set locale, using default", slog.String("language", lang), slogx.Error(err))

	localized, err = ctxi18n.WithLocale(ctx, t.defaultLanguage)
	if err != nil {
		t.logger.WarnContext(ctx, "could not set default locale", slog.String("language", t.defaultLanguage), slogx.Error(err))
		return ctx
	}

	return localized
}

func (t *Translator) Language(ctx context.Context) string {
	locale := ctxi18n.Locale(ctx)
	if locale == nil {
		return t.defaultLanguage
	}

	return string(locale.Code())
}

func (t *Translator) Translate(ctx context.Context, key string, vars map[string]any) string {
	if key == "" {
		return ""
	}

	if ctxi18n.Locale(ctx) == nil {
		ctx = t.WithLanguage(ctx, t.defaultLanguage)
	}

	if !tr.Has(ctx, key) {
		return key
	}

	if len(vars) == 0 {
		return tr.T(ctx, key)
	}

	return tr.T(ctx, key, tr.M(vars))
}

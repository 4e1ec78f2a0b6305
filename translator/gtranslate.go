package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/bregydoc/gtranslate"
)

const translateChunkSize = 2000

// GoogleTranslate covers the non-LLM providers: it translates the raw source
// text in fixed-size rune chunks and streams each chunk as a fragment.
type GoogleTranslate struct{}

func NewGoogleTranslate() *GoogleTranslate { return &GoogleTranslate{} }

func (t *GoogleTranslate) Name() string { return "google-translate" }

func (t *GoogleTranslate) Stream(ctx context.Context, req Request) (<-chan Fragment, error) {
	from := languageCode(req.Config.SourceLang, "auto")
	to := languageCode(req.Config.TargetLang, "en")

	out := make(chan Fragment)
	go func() {
		defer close(out)

		runes := []rune(req.SourceText)
		for i := 0; i < len(runes); i += translateChunkSize {
			if ctx.Err() != nil {
				return
			}
			end := i + translateChunkSize
			if end > len(runes) {
				end = len(runes)
			}

			translated, err := gtranslate.TranslateWithParams(
				string(runes[i:end]),
				gtranslate.TranslationParams{From: from, To: to},
			)
			if err != nil {
				sendFragment(ctx, out, Fragment{Err: fmt.Errorf("translating chunk: %w", err)})
				return
			}
			if !sendFragment(ctx, out, Fragment{Text: translated}) {
				return
			}
		}
	}()
	return out, nil
}

var languageCodes = map[string]string{
	"chinese":    "zh",
	"japanese":   "ja",
	"korean":     "ko",
	"english":    "en",
	"french":     "fr",
	"german":     "de",
	"spanish":    "es",
	"vietnamese": "vi",
	"thai":       "th",
	"indonesian": "id",
	"russian":    "ru",
	"portuguese": "pt",
}

// languageCode maps a display name like "Chinese" to an ISO code. Inputs that
// already look like codes pass through unchanged.
func languageCode(lang, fallback string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return fallback
	}
	if code, ok := languageCodes[strings.ToLower(lang)]; ok {
		return code
	}
	if len(lang) <= 5 && lang == strings.ToLower(lang) {
		return lang
	}
	return fallback
}

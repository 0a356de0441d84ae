package fasttranslator

import "strings"

// LangAuto is the pseudo-language selector meaning "detect the source
// language from the input". It is only meaningful as a source; a request
// targeting LangAuto is invalid.
const LangAuto = "auto"

// LanguageNames maps ISO 639-1 codes to human-readable names used in
// provider prompts.
var LanguageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"ru": "Russian",
	"uk": "Ukrainian",
	"tr": "Turkish",
	"ar": "Arabic",
	"hi": "Hindi",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
}

// LanguageName returns the human-readable name for a language code,
// falling back to the code itself.
func LanguageName(code string) string {
	if name, ok := LanguageNames[NormalizeLang(code)]; ok {
		return name
	}
	return code
}

// NormalizeLang reduces a language tag to its lowercase base code
// (e.g. "es-MX" and "ES_MX" both become "es").
func NormalizeLang(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "_", "-")
	if i := strings.Index(code, "-"); i > 0 {
		code = code[:i]
	}
	return code
}

// Resolve picks the effective translation direction for a request.
//
// detected is the language detected from the input text (empty when
// detection was inconclusive). When the input turns out to already be in
// the current target language, source and target swap so the translation
// direction stays meaningful; an inconclusive detection leaves the
// configured source untouched. The returned pair never has source equal
// to target.
func Resolve(detected, currentSource, currentTarget string) (string, string) {
	src := NormalizeLang(currentSource)
	tgt := NormalizeLang(currentTarget)
	det := NormalizeLang(detected)

	if det == "" || det == LangAuto {
		if src == tgt {
			// Degenerate configuration; keep the direction meaningful.
			return src, defaultCounterpart(src)
		}
		return src, tgt
	}

	if det == tgt {
		if src != tgt && src != LangAuto {
			// Input already in the target language: swap direction.
			return tgt, src
		}
		// Nothing sensible to swap with.
		return det, defaultCounterpart(det)
	}

	// Conclusive detection of a non-target language: translate what the
	// user actually typed.
	return det, tgt
}

// defaultCounterpart returns a fallback target opposite the given
// language, so Resolve can keep its source != target guarantee.
func defaultCounterpart(lang string) string {
	if lang == "en" {
		return "es"
	}
	return "en"
}

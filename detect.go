package fasttranslator

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// Detector identifies the language of a piece of text. An empty result
// means detection was inconclusive and the caller should keep its
// configured source language.
type Detector interface {
	Detect(text string) string
}

var (
	linguaOnce     sync.Once
	linguaDetector lingua.LanguageDetector
)

// LinguaDetector detects languages with the lingua statistical models.
// The underlying detector is expensive to build and shared process-wide.
type LinguaDetector struct{}

// NewLinguaDetector returns the shared lingua-backed detector.
func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{}
}

// Detect returns the lowercase ISO 639-1 code for the text's language, or
// "" when the sample is too short or ambiguous to call.
func (d *LinguaDetector) Detect(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		return ""
	}

	language, exists := getLinguaDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func getLinguaDetector() lingua.LanguageDetector {
	linguaOnce.Do(func() {
		linguaDetector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build()
	})
	return linguaDetector
}

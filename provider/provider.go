// Package provider implements translate backends for the dispatcher.
package provider

import (
	fasttranslator "github.com/futurediffusion/fast-translator"
)

// Client is the interface for translate backends.
// This is an alias to the root package interface for convenience.
type Client = fasttranslator.TranslateClient

// buildPrompt produces the instruction sent to a generative backend. The
// model is told to wrap the translation in the delimiter pair the
// dispatcher's parser expects.
func buildPrompt(sourceLang, targetLang, text string) string {
	target := fasttranslator.LanguageName(targetLang)
	marker := fasttranslator.Delimiter

	if fasttranslator.NormalizeLang(sourceLang) == fasttranslator.LangAuto {
		return "Translate the following text to " + target + ". " +
			"Wrap the translation in " + marker + " markers, exactly one pair, and output nothing else.\n\n" + text
	}

	source := fasttranslator.LanguageName(sourceLang)
	return "Translate the following " + source + " text to " + target + ". " +
		"Wrap the translation in " + marker + " markers, exactly one pair, and output nothing else.\n\n" + text
}

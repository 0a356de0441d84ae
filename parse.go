package fasttranslator

import "strings"

// Delimiter is the marker pair the provider is instructed to wrap the
// translated payload in. The prompt asks for exactly one delimited span;
// anything else is treated as an uninterpretable response.
const Delimiter = "**"

// ExtractTranslation pulls the translated payload out of a raw provider
// response. The payload is the substring strictly between one Delimiter
// pair. A response with no delimited span, or with more than one, yields a
// *ParseError and must not be cached.
func ExtractTranslation(raw string) (string, error) {
	first := strings.Index(raw, Delimiter)
	if first < 0 {
		return "", &ParseError{Message: "no delimited span in response", Raw: raw}
	}

	rest := raw[first+len(Delimiter):]
	second := strings.Index(rest, Delimiter)
	if second < 0 {
		return "", &ParseError{Message: "unterminated delimited span", Raw: raw}
	}

	if strings.Contains(rest[second+len(Delimiter):], Delimiter) {
		return "", &ParseError{Message: "multiple delimited spans in response", Raw: raw}
	}

	return rest[:second], nil
}

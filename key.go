package fasttranslator

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeText prepares text for cache keying: leading/trailing whitespace
// is trimmed and runs of inner whitespace collapse to a single space, so a
// retyped phrase with stray spacing maps to the same key. Case is preserved
// because it can change the translation.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Key derives the deterministic cache key for a (source, target, text)
// triple. The normalized text is hashed so keys stay fixed-width regardless
// of input length.
func Key(sourceLang, targetLang, text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return NormalizeLang(sourceLang) + ":" + NormalizeLang(targetLang) + ":" + hex.EncodeToString(sum[:])
}

package audit

import (
	"fmt"
	"regexp"
	"strings"
)

// Redaction markers. Irreversible by design; nothing downstream can
// recover the original value.
const (
	RedactedMarker         = "[REDACTED]"
	RedactedKeyMarker      = "[REDACTED_KEY]"
	RedactedMnemonicMarker = "[REDACTED_MNEMONIC]"
)

// sensitiveTerms flags detail keys whose values are dropped outright,
// whatever their type.
var sensitiveTerms = []string{
	"privatekey",
	"private_key",
	"mnemonic",
	"seed",
	"secret",
	"password",
	"key",
}

// hexKeyPattern matches a 64-hex-character run, with or without a 0x
// prefix, anywhere inside a value.
var hexKeyPattern = regexp.MustCompile(`(?:0x)?[0-9a-fA-F]{64}`)

// sanitizeDetails applies the redaction rules in order: sensitive key
// names first, then private-key-shaped values, then mnemonic-shaped
// values. The input map is never mutated.
func sanitizeDetails(details map[string]any) map[string]string {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]string, len(details))
	for k, v := range details {
		if isSensitiveKey(k) {
			out[k] = RedactedMarker
			continue
		}
		out[k] = sanitizeValue(v)
	}
	return out
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, term := range sensitiveTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func sanitizeValue(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if hexKeyPattern.MatchString(s) {
		return RedactedKeyMarker
	}
	if n := len(strings.Fields(s)); n == 12 || n == 24 {
		return RedactedMnemonicMarker
	}
	return s
}

// MaskAddress reduces an address to a first-6/last-4 hint. Anything too
// short to mask safely is redacted entirely.
func MaskAddress(addr string) string {
	if addr == "" {
		return ""
	}
	if len(addr) < 12 {
		return RedactedMarker
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

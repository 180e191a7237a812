package slug

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

type config struct {
	separator    string
	maxLength    int
	suffixLength int
}

// Option configures slug generation.
type Option func(*config)

// Separator sets the word separator. Default is "-".
func Separator(s string) Option {
	return func(c *config) { c.separator = s }
}

// MaxLength truncates the slug body to at most n characters. The random
// suffix, if any, is appended after truncation.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// WithSuffix appends a random hex suffix of n characters, separated by the
// configured separator. Useful when slugs must be unique without a
// read-before-write.
func WithSuffix(n int) Option {
	return func(c *config) { c.suffixLength = n }
}

// Make converts a name into a lowercase slug: letters and digits are kept,
// every other run of characters collapses into a single separator.
func Make(name string, opts ...Option) string {
	cfg := config{separator: "-"}
	for _, opt := range opts {
		opt(&cfg)
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteString(cfg.separator)
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
	}

	out := b.String()
	if cfg.maxLength > 0 && len(out) > cfg.maxLength {
		out = strings.TrimRight(out[:cfg.maxLength], cfg.separator)
	}

	if cfg.suffixLength > 0 {
		suffix := randomHex(cfg.suffixLength)
		if out == "" {
			return suffix
		}
		return out + cfg.separator + suffix
	}

	return out
}

func randomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand is documented to never fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)[:n]
}

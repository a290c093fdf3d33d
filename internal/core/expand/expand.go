// Package expand derives query variants from seed keywords.
package expand

import "strings"

// Options control which variants are generated for a seed.
type Options struct {
	// Letters appends "seed a" .. "seed z".
	Letters bool
	// Prefixes are joined before the seed ("best" -> "best seed").
	Prefixes []string
	// Suffixes are joined after the seed ("near me" -> "seed near me").
	Suffixes []string
}

// Variants returns the ordered, distinct set of query variants for a seed.
// The seed itself always comes first; blank strings are dropped after
// trimming and duplicates keep their first-seen position.
func Variants(seed string, opts Options) []string {
	variants := []string{seed}

	if opts.Letters {
		for ch := 'a'; ch <= 'z'; ch++ {
			variants = append(variants, seed+" "+string(ch))
		}
	}
	for _, p := range opts.Prefixes {
		variants = append(variants, p+" "+seed)
	}
	for _, s := range opts.Suffixes {
		variants = append(variants, seed+" "+s)
	}

	return Distinct(variants)
}

// Seeds parses a newline-separated seed batch: trimmed, blanks dropped,
// duplicates removed preserving first-seen order.
func Seeds(raw string) []string {
	return Distinct(strings.Split(raw, "\n"))
}

// Lines trims and filters a list of strings, keeping order.
func Lines(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Distinct trims values, drops blanks, and removes duplicates while
// preserving first-seen order.
func Distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

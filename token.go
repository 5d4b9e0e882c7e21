package libemit

import "strings"

// unknownName is the display name used for symbolic tokens that carry no name.
const unknownName = "unknown"

type (
	// Sym is an opaque event-type token. Two Syms are the same event type only
	// when they are the same pointer, which makes them collision-free keys for
	// private events, unlike plain strings. The name is used for display only.
	Sym struct {
		name string
	}
)

// NewSym returns a fresh symbolic event-type token. The name is informational;
// it never participates in identity.
func NewSym(name string) *Sym {
	return &Sym{name: name}
}

// Name returns the display name the Sym was created with. It may be empty.
func (s *Sym) Name() string {
	return s.name
}

func (s *Sym) String() string {
	if s.name == "" {
		return unknownName
	}
	return s.name
}

// validToken reports whether v is usable as an event-type token: a string or a
// non-nil *Sym.
func validToken(v any) bool {
	switch t := v.(type) {
	case string:
		return true
	case *Sym:
		return t != nil
	default:
		return false
	}
}

// displayName resolves the human-readable name of a token: strings verbatim,
// Syms by their name, falling back to a fixed placeholder.
func displayName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case *Sym:
		return t.String()
	default:
		return unknownName
	}
}

// splitNames splits s on delim, dropping empty tokens so that runs of repeated
// delimiters collapse into single boundaries.
func splitNames(s, delim string) []string {
	parts := strings.Split(s, delim)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		names = append(names, p)
	}
	return names
}

// dedupTokens copies tokens, preserving first-occurrence order and removing
// duplicates.
func dedupTokens(tokens []any) []any {
	seen := make(map[any]struct{}, len(tokens))
	out := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

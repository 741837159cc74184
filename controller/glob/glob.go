package glob

import "path"

// Glob is a parsed pattern along with the key range that can contain
// matches. Limits are pivots for ordered scans: ascending scans cover
// [Limits[0], Limits[1]) and descending scans (Limits[0], Limits[1]].
// Empty limits mean unbounded.
type Glob struct {
	Pattern string
	Desc    bool
	Limits  []string
	IsGlob  bool
}

// Match returns true when the name matches the pattern.
func Match(pattern, name string) (matched bool, err error) {
	return path.Match(pattern, name)
}

// IsGlob returns true when the pattern contains valid glob characters.
func IsGlob(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '[', '*', '?':
			_, err := Match(pattern, "whatever")
			return err == nil
		}
	}
	return false
}

// Parse returns a parsed pattern with scan limits derived from the
// pattern's literal prefix.
func Parse(pattern string, desc bool) *Glob {
	g := &Glob{Pattern: pattern, Desc: desc, Limits: []string{"", ""}}
	prefix := pattern
outer:
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '[', '*', '?':
			if _, err := Match(pattern, "whatever"); err == nil {
				g.IsGlob = true
				prefix = pattern[:i]
			}
			break outer
		}
	}
	if prefix == "" {
		return g
	}
	if desc {
		g.Limits[0] = incrLast(prefix)
		g.Limits[1] = decrLast(prefix)
	} else {
		g.Limits[0] = prefix
		g.Limits[1] = incrLast(prefix)
	}
	return g
}

// incrLast returns the next string after all strings prefixed by s.
func incrLast(s string) string {
	b := []byte(s)
	if b[len(b)-1] == 0xFF {
		return string(append(b, 0))
	}
	b[len(b)-1]++
	return string(b)
}

// decrLast returns the greatest string below s, borrowing through zero
// bytes. An empty result means there is no lower bound.
func decrLast(s string) string {
	b := []byte(s)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] > 0 {
			b[i]--
			return string(b)
		}
		b[i] = 0xFF
	}
	return ""
}

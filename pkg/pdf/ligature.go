package pdf

// ligatureExpansions maps a single ligature code point to the sequence of
// ordinary letters it stands for, applied to each code's resolved text while
// the CharMap is built (before the embedding-mode collision check) so
// extracted/embedded text measures and searches the way a reader expects.
var ligatureExpansions = map[rune]string{
	0xFB00: "ff", 0xFB01: "fi", 0xFB02: "fl", 0xFB03: "ffi", 0xFB04: "ffl",
	0xFB05: "st", 0xFB06: "st",
}

// NormalizeLigatures expands known ligature code points in s.
func NormalizeLigatures(s string) string {
	hasLigature := false
	for _, r := range s {
		if _, ok := ligatureExpansions[r]; ok {
			hasLigature = true
			break
		}
	}
	if !hasLigature {
		return s
	}

	var out []rune
	for _, r := range s {
		if expansion, ok := ligatureExpansions[r]; ok {
			out = append(out, []rune(expansion)...)
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}

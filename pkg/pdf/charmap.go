package pdf

import (
	"sort"
	"sync"
)

const (
	puaStart rune = 0xE000
	puaEnd rune = 0xF8FF
)

type charMapMode int

const (
	charMapEmbedding charMapMode = iota
	charMapExtraction
)

// charMapEntry is one resolved code's output: a (possibly ligature- or
// multi-character) string, plus the font glyph index it was resolved
// against, when known.
type charMapEntry struct {
	text string
	glyphIndex int // -1 if no glyph index is known for this code
	hasGlyph bool
}

// CharMap is a font's resolved code -> output-text table, built once by
// walking the 6-priority resolution chain. Two constructors produce the
// same type under different population rules (embedding vs. extraction)
// so the mode never leaks past construction.
type CharMap struct {
	font *Font
	mode charMapMode

	mu sync.Mutex
	done bool
	table map[uint32]charMapEntry

	// Embedding-mode collision bookkeeping: every output rune in an
	// embedded font's text must belong to exactly one glyph index, or be
	// remapped into the Private Use Area.
	assignedRune map[int]rune // glyph index -> output rune already committed
	runeOwner map[rune]int // output rune -> the glyph index that owns it
	nextPUA rune
	puaExhausted bool
}

// NewEmbeddingCharMap builds a CharMap for a font whose glyphs the SVG
// emitter will reference directly (inlined font program). Output runes are
// guaranteed collision-free per glyph index.
func NewEmbeddingCharMap(font *Font) *CharMap {
	return &CharMap{
		font: font,
		mode: charMapEmbedding,
		assignedRune: make(map[int]rune),
		runeOwner: make(map[rune]int),
		nextPUA: puaStart,
	}
}

// NewExtractionCharMap builds a CharMap for plain-text extraction: no PUA
// remapping, duplicates resolved first-wins, and the single-character
// ToUnicode preference (priority 1) is skipped since there is no glyph
// identity to disambiguate.
func NewExtractionCharMap(font *Font) *CharMap {
	return &CharMap{
		font: font,
		mode: charMapExtraction,
	}
}

// Populate runs the single-shot build(). Safe to call more than once; it is a no-op after a
// successful attempt, and retries fully from scratch after a failed one.
func (cm *CharMap) Populate() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.done {
		return nil
	}

	table, err := cm.build()
	if err != nil {
		return err
	}
	cm.table = table
	cm.done = true
	return nil
}

// Resolve returns the output text for code, populating the CharMap on
// first use if it has not been already. Codes outside the font's declared
// domain (/Widths, /ToUnicode, or 0..255 for simple fonts) resolve to
// ".notdef" territory: an empty string and ok=false.
func (cm *CharMap) Resolve(code uint32) (string, bool) {
	if err := cm.Populate(); err != nil {
		return "", false
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	entry, ok := cm.table[code]
	if !ok {
		return "", false
	}
	return entry.text, true
}

// domain enumerates the codes this CharMap should eagerly resolve: every
// simple font covers the full single-byte range; composite fonts cover the
// union of codes their /Widths table and ToUnicode CMap mention, since the
// true code space (governed by the descendant CMap's codespace ranges) is
// not tracked precisely by this implementation.
func (cm *CharMap) domain() []uint32 {
	font := cm.font
	if !font.Composite {
		codes := make([]uint32, 256)
		for i := range codes {
			codes[i] = uint32(i)
		}
		return codes
	}

	seen := make(map[uint32]bool)
	for code := range font.Widths {
		seen[code] = true
	}
	if font.ToUnicode != nil {
		for code := range font.ToUnicode.single {
			seen[code] = true
		}
		for code := range font.ToUnicode.multi {
			seen[code] = true
		}
	}
	codes := make([]uint32, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

func (cm *CharMap) build() (map[uint32]charMapEntry, error) {
	table := make(map[uint32]charMapEntry)
	for _, code := range cm.domain() {
		text, glyphIndex, hasGlyph := cm.resolveCode(code)
		text = NormalizeLigatures(text)

		if cm.mode == charMapEmbedding && hasGlyph {
			text = cm.dedupeForEmbedding(text, glyphIndex)
		} else {
			for _, r := range text {
				if isControlRune(r) {
					// Control characters are never output targets; with no
					// glyph to remap into the Private Use Area the code
					// resolves to .notdef.
					text = ""
					break
				}
			}
		}

		table[code] = charMapEntry{text: text, glyphIndex: glyphIndex, hasGlyph: hasGlyph}
	}
	return table, nil
}

// resolveCode walks the priority chain for one code: (1) single-char
// ToUnicode, (2) explicit single-byte encoding, (3) font-internal cmap,
// (4) multi-char ToUnicode, (5) Adobe Glyph List, (6) .notdef. Extraction
// mode skips step 1's single-character preference and consults
// single-character ToUnicode entries at step 4 instead.
func (cm *CharMap) resolveCode(code uint32) (text string, glyphIndex int, hasGlyph bool) {
	font := cm.font

	if cm.mode == charMapEmbedding && font.ToUnicode != nil {
		if r, ok := font.ToUnicode.SingleRune(code); ok {
			gi, has := cm.glyphIndexFor(code, r)
			return string(r), gi, has
		}
	}

	if !font.Composite && code <= 0xFF {
		b := byte(code)
		if name, ok := font.GlyphName(b); ok {
			if r, ok := GlyphNameToRune(name); ok {
				gi, has := cm.glyphIndexFor(code, r)
				return string(r), gi, has
			}
		}
		if r := font.BaseEncodingRune(b); r != 0 {
			gi, has := cm.glyphIndexFor(code, r)
			return string(r), gi, has
		}
	}

	if font.FontProgram != nil {
		if idx, ok := font.FontProgram.LookupCmap(rune(code)); ok {
			// The font program's own cmap only tells us the glyph index;
			// without a Unicode value we fall through priorities 4-5 for
			// the text, but we already know the glyph this code paints.
			if font.ToUnicode != nil {
				if s, ok := font.ToUnicode.MultiString(code); ok {
					return s, int(idx), true
				}
				if r, ok := font.ToUnicode.SingleRune(code); ok {
					return string(r), int(idx), true
				}
			}
			return "", int(idx), true
		}
	}

	if font.ToUnicode != nil {
		if s, ok := font.ToUnicode.MultiString(code); ok {
			gi, has := cm.glyphIndexFor(code, 0)
			return s, gi, has
		}
		if cm.mode == charMapExtraction {
			if r, ok := font.ToUnicode.SingleRune(code); ok {
				gi, has := cm.glyphIndexFor(code, r)
				return string(r), gi, has
			}
		}
	}

	if !font.Composite && code <= 0xFF {
		if name, ok := font.GlyphName(byte(code)); ok {
			if r, ok := GlyphNameToRune(name); ok {
				gi, has := cm.glyphIndexFor(code, r)
				return string(r), gi, has
			}
		}
	}

	return "", -1, false
}

// glyphIndexFor resolves the glyph index a code paints, preferring the
// font program's own cmap lookup of the resolved rune and falling back to
// treating the code itself as the glyph index for composite fonts using
// Identity CID-to-GID mapping.
func (cm *CharMap) glyphIndexFor(code uint32, r rune) (int, bool) {
	font := cm.font
	if font.FontProgram != nil && r != 0 {
		if idx, ok := font.FontProgram.LookupCmap(r); ok {
			return int(idx), true
		}
	}
	if font.Composite {
		return int(code), true
	}
	return -1, false
}

// dedupeForEmbedding enforces the embedding-mode invariant: each output
// rune belongs to exactly one glyph index. A collision is resolved by
// remapping this glyph's text to a freshly allocated Private Use Area
// point; once the allocator reaches U+F8FF, further collisions fall back
// to ".notdef".
func (cm *CharMap) dedupeForEmbedding(text string, glyphIndex int) string {
	runes := []rune(text)
	if len(runes) != 1 {
		// Multi-rune outputs (ligature expansions, multi-char ToUnicode
		// entries) are not subject to the per-glyph collision rule: they
		// are extraction text, not a single glyph's identity.
		return text
	}
	r := runes[0]
	if isControlRune(r) {
		return cm.allocatePUA(glyphIndex)
	}

	if owner, taken := cm.runeOwner[r]; taken {
		if owner == glyphIndex {
			return text
		}
		return cm.allocatePUA(glyphIndex)
	}

	if existing, ok := cm.assignedRune[glyphIndex]; ok && existing != r {
		return cm.allocatePUA(glyphIndex)
	}

	cm.runeOwner[r] = glyphIndex
	cm.assignedRune[glyphIndex] = r
	return text
}

func (cm *CharMap) allocatePUA(glyphIndex int) string {
	if existing, ok := cm.assignedRune[glyphIndex]; ok && existing >= puaStart && existing <= puaEnd {
		return string(existing)
	}
	if cm.puaExhausted {
		return ""
	}
	for cm.nextPUA <= puaEnd {
		candidate := cm.nextPUA
		cm.nextPUA++
		if _, taken := cm.runeOwner[candidate]; taken {
			continue
		}
		cm.runeOwner[candidate] = glyphIndex
		cm.assignedRune[glyphIndex] = candidate
		return string(candidate)
	}
	cm.puaExhausted = true
	return ""
}

func isControlRune(r rune) bool {
	return r < 0x20 || (r >= 0x7F && r <= 0x9F)
}

// CharMapForEmbedding returns the font's embedding-mode CharMap, building
// it on first use.
func (f *Font) CharMapForEmbedding() *CharMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.embedMap == nil {
		f.embedMap = NewEmbeddingCharMap(f)
	}
	return f.embedMap
}

// CharMapForExtraction returns the font's extraction-mode CharMap, building
// it on first use.
func (f *Font) CharMapForExtraction() *CharMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.extractMap == nil {
		f.extractMap = NewExtractionCharMap(f)
	}
	return f.extractMap
}

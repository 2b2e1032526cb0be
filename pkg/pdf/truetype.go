package pdf

import (
	"fmt"

	"github.com/golang/freetype/truetype"
)

// EmbeddedFontProgram is an embedded TrueType/OpenType font program, parsed
// only far enough to answer the two questions the CharMap chain and the SVG
// emitter need: what glyph does this code map to (priority 3 of the
// resolution chain), and how many glyphs does the program define. Outline rasterizing
// is out of scope; glyphs are inlined as font-program bytes, not painted
// paths.
type EmbeddedFontProgram struct {
	ttf *truetype.Font
	numGlyphs int
}

// ParseEmbeddedFontProgram parses raw FontFile2 (TrueType) or FontFile3
// (OpenType) bytes extracted from a font descriptor. CFF-flavored programs
// (Type1C, CIDFontType0C) are not parsed by github.com/golang/freetype's
// truetype package, which only understands TrueType glyf outlines and
// sfnt-wrapped OpenType; callers treat a parse failure as "no
// font-internal cmap available" and fall through the priority chain.
func ParseEmbeddedFontProgram(data []byte) (*EmbeddedFontProgram, error) {
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font program: %w", err)
	}
	return &EmbeddedFontProgram{ttf: ttf, numGlyphs: ttf.NumGlyphs()}, nil
}

// LookupCmap resolves a character code through the font program's own cmap
// table, as priority 3 of the CharMap chain does for simple TrueType fonts
// whose code happens to equal a Unicode-ish cmap input.
func (p *EmbeddedFontProgram) LookupCmap(code rune) (truetype.Index, bool) {
	if p == nil || p.ttf == nil {
		return 0, false
	}
	idx := p.ttf.Index(code)
	if idx == 0 {
		return 0, false
	}
	return idx, true
}

// NumGlyphs reports the glyph count recorded in the font program's maxp
// table.
func (p *EmbeddedFontProgram) NumGlyphs() int {
	if p == nil {
		return 0
	}
	return p.numGlyphs
}

// ExtractFontProgramBytes reads FontFile2/FontFile3/FontFile from a font
// descriptor, in that preference order (TrueType and OpenType are what the
// priority-3 lookup and the SVG emitter's @font-face embedding can use;
// Type1 programs are kept only as raw bytes for embedding, not parsed).
func ExtractFontProgramBytes(descriptor Dictionary, doc *Document) ([]byte, string, error) {
	for _, key := range []string{"FontFile2", "FontFile3", "FontFile"} {
		ref := descriptor.Get(key)
		if ref == nil {
			continue
		}
		obj, err := doc.ResolveObject(ref)
		if err != nil {
			continue
		}
		stream, ok := obj.(Stream)
		if !ok {
			continue
		}
		data, err := stream.Decode()
		if err != nil {
			return nil, "", fmt.Errorf("decode %s: %w", key, err)
		}
		return data, key, nil
	}
	return nil, "", fmt.Errorf("no embedded font program")
}

package pdf

import (
	"sync"
)

// FontKind tags a font's underlying program format.
type FontKind int

const (
	FontType1 FontKind = iota
	FontTrueType
	FontMMType1
	FontType3
	FontType0
	FontCIDType0
	FontCIDType2
)

// Font is the resolved font entity the text-showing operators and the
// CharMap builder consume. It is materialized once per
// resource dictionary entry and cached on the Document.
type Font struct {
	doc *Document
	Dict Dictionary
	Kind FontKind
	BaseFont string
	Subset bool

	// Simple fonts (Type1/TrueType/MMType1/Type3): single-byte code to
	// glyph name, built from /Encoding's BaseEncoding and /Differences.
	Composite bool
	BaseEncodingName string
	Differences map[byte]string

	// Composite fonts (Type0): descendant CIDFont's identity and the
	// code->CID CMap this implementation supports (Identity-H/V; any
	// other predefined CMap falls back to treating bytes as CIDs
	// directly, documented as a known limitation).
	CIDSystemInfo CIDSystemInfo
	CMapName string

	Widths map[uint32]float64
	DefaultWidth float64

	// Flags is the FontDescriptor's /Flags bitmask (ISO 32000 Table 123:
	// bit 1 FixedPitch, bit 2 Serif, bit 7 Italic, ...), consulted by the
	// SVG emitter's substitute-font resolution when no embedded program
	// is available.
	Flags int

	ToUnicode *ToUnicodeCMap

	FontProgramBytes []byte
	FontProgramKey string
	FontProgram *EmbeddedFontProgram

	mu sync.Mutex
	embedMap *CharMap
	extractMap *CharMap
}

// loadFont materializes a Font from a resolved /Font dictionary.
func loadFont(doc *Document, dict Dictionary) (*Font, error) {
	font := &Font{doc: doc, Dict: dict}

	if baseFont, ok := dict.Get("BaseFont").(Name); ok {
		font.BaseFont = string(baseFont)
		font.Subset = isSubsetTag(font.BaseFont)
	}

	subtype, _ := dict.GetName("Subtype")
	switch subtype {
	case "Type0":
		font.Kind = FontType0
		font.Composite = true
	case "TrueType":
		font.Kind = FontTrueType
	case "MMType1":
		font.Kind = FontMMType1
	case "Type3":
		font.Kind = FontType3
	default:
		font.Kind = FontType1
	}

	if font.Composite {
		loadCompositeFont(font, dict, doc)
	} else {
		loadSimpleFont(font, dict, doc)
	}

	if toUniRef := dict.Get("ToUnicode"); toUniRef != nil {
		if obj, err := doc.ResolveObject(toUniRef); err == nil {
			if stream, ok := obj.(Stream); ok {
				if data, err := stream.Decode(); err == nil {
					font.ToUnicode = ParseToUnicodeCMap(data)
				}
			}
		}
	}

	return font, nil
}

// isSubsetTag reports whether name begins with the six-uppercase-letter
// subset tag ISO 32000 §9.6.4 reserves for subsetted embedded fonts.
func isSubsetTag(name string) bool {
	if len(name) < 7 || name[6] != '+' {
		return false
	}
	for _, c := range name[:6] {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func loadSimpleFont(font *Font, dict Dictionary, doc *Document) {
	font.Differences = make(map[byte]string)

	if encObj := dict.Get("Encoding"); encObj != nil {
		resolved, err := doc.ResolveObject(encObj)
		if err == nil {
			switch enc := resolved.(type) {
			case Name:
				font.BaseEncodingName = string(enc)
			case Dictionary:
				if base, ok := enc.GetName("BaseEncoding"); ok {
					font.BaseEncodingName = string(base)
				}
				if diffsArr, ok := enc.GetArray("Differences"); ok {
					applyDifferences(font.Differences, diffsArr)
				}
			}
		}
	}

	font.Widths = make(map[uint32]float64)
	if first, ok := dict.GetInt("FirstChar"); ok {
		if widthsArr, ok := dict.GetArray("Widths"); ok {
			for i, w := range widthsArr {
				if resolved, err := doc.ResolveObject(w); err == nil {
					if n, ok := numberValue(resolved); ok {
						font.Widths[uint32(first)+uint32(i)] = n
					}
				}
			}
		}
	}

	descriptor := resolveFontDescriptor(dict, doc)
	if descriptor != nil {
		loadFontProgram(font, descriptor, doc)
		if mw, ok := descriptor.GetNumber("MissingWidth"); ok {
			font.DefaultWidth = mw
		}
		if flags, ok := descriptor.GetInt("Flags"); ok {
			font.Flags = int(flags)
		}
	}
}

func loadCompositeFont(font *Font, dict Dictionary, doc *Document) {
	if cmapName, ok := dict.Get("Encoding").(Name); ok {
		font.CMapName = string(cmapName)
	}

	font.CIDSystemInfo = ResolveCIDSystemInfo(dict, doc)

	descArr, ok := dict.GetArray("DescendantFonts")
	if !ok || len(descArr) == 0 {
		return
	}
	descObj, err := doc.ResolveObject(descArr[0])
	if err != nil {
		return
	}
	desc, ok := descObj.(Dictionary)
	if !ok {
		return
	}

	subtype, _ := desc.GetName("Subtype")
	if subtype == "CIDFontType0" {
		font.Kind = FontCIDType0
	} else {
		font.Kind = FontCIDType2
	}

	if dw, ok := desc.GetNumber("DW"); ok {
		font.DefaultWidth = dw
	} else {
		font.DefaultWidth = 1000
	}
	font.Widths = parseCIDWidths(desc, doc)

	descriptor := resolveFontDescriptor(desc, doc)
	if descriptor != nil {
		loadFontProgram(font, descriptor, doc)
		if flags, ok := descriptor.GetInt("Flags"); ok {
			font.Flags = int(flags)
		}
	}
}

// parseCIDWidths expands a CIDFont's /W array: each run is either
// `c [w1 w2...]` (explicit per-CID widths) or `cFirst cLast w` (one width
// over a range).
func parseCIDWidths(desc Dictionary, doc *Document) map[uint32]float64 {
	widths := make(map[uint32]float64)
	arr, ok := desc.GetArray("W")
	if !ok {
		return widths
	}

	resolve := func(o Object) Object {
		r, err := doc.ResolveObject(o)
		if err != nil {
			return o
		}
		return r
	}

	i := 0
	for i < len(arr) {
		first, ok := numberValue(resolve(arr[i]))
		if !ok {
			i++
			continue
		}
		i++
		if i >= len(arr) {
			break
		}
		if next, ok := resolve(arr[i]).(Array); ok {
			for j, w := range next {
				if wv, ok := numberValue(resolve(w)); ok {
					widths[uint32(first)+uint32(j)] = wv
				}
			}
			i++
			continue
		}
		last, ok := numberValue(resolve(arr[i]))
		if !ok {
			i++
			continue
		}
		i++
		if i >= len(arr) {
			break
		}
		w, ok := numberValue(resolve(arr[i]))
		i++
		if !ok {
			continue
		}
		for c := int64(first); c <= int64(last); c++ {
			widths[uint32(c)] = w
		}
	}
	return widths
}

func numberValue(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Integer:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

func applyDifferences(dst map[byte]string, arr Array) {
	var code int64
	for _, item := range arr {
		switch v := item.(type) {
		case Integer:
			code = int64(v)
		case Real:
			code = int64(v)
		case Name:
			if code >= 0 && code <= 255 {
				dst[byte(code)] = string(v)
			}
			code++
		}
	}
}

func resolveFontDescriptor(dict Dictionary, doc *Document) Dictionary {
	ref := dict.Get("FontDescriptor")
	if ref == nil {
		return nil
	}
	obj, err := doc.ResolveObject(ref)
	if err != nil {
		return nil
	}
	desc, _ := obj.(Dictionary)
	return desc
}

// loadFontProgram extracts FontFile2/FontFile3/FontFile bytes and, for
// TrueType/OpenType programs, parses them far enough to drive priority-3
// CharMap lookups.
func loadFontProgram(font *Font, descriptor Dictionary, doc *Document) {
	data, key, err := ExtractFontProgramBytes(descriptor, doc)
	if err != nil {
		return
	}
	font.FontProgramBytes = data
	font.FontProgramKey = key

	if key == "FontFile2" || key == "FontFile3" {
		if prog, err := ParseEmbeddedFontProgram(data); err == nil {
			font.FontProgram = prog
		}
	}
}

// GlyphName returns the glyph name a simple font's /Encoding /Differences
// array assigns to code. Codes /Differences does not name report false;
// the base encoding is decoded straight to a rune by BaseEncodingRune.
func (f *Font) GlyphName(code byte) (string, bool) {
	if name, ok := f.Differences[code]; ok {
		return name, true
	}
	return "", false
}

// BaseEncodingRune decodes code through the font's declared base
// single-byte encoding, defaulting to StandardEncoding when none is
// declared.
func (f *Font) BaseEncodingRune(code byte) rune {
	switch f.BaseEncodingName {
	case "WinAnsiEncoding":
		return WinAnsiRune(code)
	case "MacRomanEncoding":
		return MacRomanRune(code)
	case "MacExpertEncoding":
		return MacExpertEncodingRune(code)
	default:
		return StandardEncodingRune(code)
	}
}

// Width returns the glyph width (in 1000-unit text space) for a code/CID,
// falling back to the font's default width.
func (f *Font) Width(code uint32) float64 {
	if w, ok := f.Widths[code]; ok {
		return w
	}
	if f.DefaultWidth != 0 {
		return f.DefaultWidth
	}
	return 500
}

// DecodeString splits a shown-text byte string into codes, one byte per
// code for simple fonts, two bytes per code for composite fonts using the
// Identity or other two-byte predefined CMaps (the only multi-byte CMaps
// this implementation decodes; others fall back to two-byte codes with a
// warning left to the caller).
func (f *Font) DecodeString(s []byte) []uint32 {
	if !f.Composite {
		codes := make([]uint32, len(s))
		for i, b := range s {
			codes[i] = uint32(b)
		}
		return codes
	}

	codes := make([]uint32, 0, len(s)/2+1)
	for i := 0; i+1 < len(s); i += 2 {
		codes = append(codes, uint32(s[i])<<8|uint32(s[i+1]))
	}
	if len(s)%2 == 1 {
		codes = append(codes, uint32(s[len(s)-1]))
	}
	return codes
}

func fontKindName(k FontKind) string {
	switch k {
	case FontType1:
		return "Type1"
	case FontTrueType:
		return "TrueType"
	case FontMMType1:
		return "MMType1"
	case FontType3:
		return "Type3"
	case FontType0:
		return "Type0"
	case FontCIDType0:
		return "CIDFontType0"
	case FontCIDType2:
		return "CIDFontType2"
	}
	return "Unknown"
}

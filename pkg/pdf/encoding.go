package pdf

import "golang.org/x/text/encoding/charmap"

// WinAnsiRune decodes one WinAnsiEncoding code point via Windows-1252,
// the encoding WinAnsiEncoding is defined to match for all but a handful
// of control-range slots PDF leaves unused anyway.
func WinAnsiRune(code byte) rune {
	r := charmap.Windows1252.DecodeByte(code)
	if r == 0 && code != 0 {
		return 0xFFFD
	}
	return r
}

// MacRomanRune decodes one MacRomanEncoding code point via the Macintosh
// charmap.
func MacRomanRune(code byte) rune {
	r := charmap.Macintosh.DecodeByte(code)
	if r == 0 && code != 0 {
		return 0xFFFD
	}
	return r
}

// standardEncodingHigh covers AdobeStandardEncoding's non-ASCII slots
// (0x80..0xFF minus the unused ones PDF readers never see in practice).
// Codes 0x20..0x7E map 1:1 to ASCII, handled separately.
var standardEncodingHigh = map[byte]rune{
	0xA1: 0x00A1, 0xA2: 0x00A2, 0xA3: 0x00A3, 0xA4: 0x2044, 0xA5: 0x00A5,
	0xA6: 0x0192, 0xA7: 0x00A7, 0xA8: 0x00A4, 0xA9: 0x0027, 0xAA: 0x201C,
	0xAB: 0x00AB, 0xAC: 0x2039, 0xAD: 0x203A, 0xAE: 0xFB01, 0xAF: 0xFB02,
	0xB1: 0x2013, 0xB2: 0x2020, 0xB3: 0x2021, 0xB4: 0x00B7, 0xB6: 0x00B6,
	0xB7: 0x2022, 0xB8: 0x201A, 0xB9: 0x201E, 0xBA: 0x201D, 0xBB: 0x00BB,
	0xBC: 0x2026, 0xBD: 0x2030, 0xBF: 0x00BF, 0xC1: 0x0060, 0xC2: 0x00B4,
	0xC3: 0x02C6, 0xC4: 0x02DC, 0xC5: 0x00AF, 0xC6: 0x02D8, 0xC7: 0x02D9,
	0xC8: 0x00A8, 0xCA: 0x02DA, 0xCB: 0x00B8, 0xCD: 0x02DD, 0xCE: 0x02DB,
	0xCF: 0x02C7, 0xD0: 0x2014, 0xE1: 0x00C6, 0xE3: 0x00AA, 0xE8: 0x0141, 0xE9: 0x00D8,
	0xEA: 0x0152, 0xEB: 0x00BA, 0xF1: 0x00E6, 0xF5: 0x0131, 0xF8: 0x0142,
	0xF9: 0x00F8, 0xFA: 0x0153, 0xFB: 0x00DF,
}

// StandardEncodingRune decodes one AdobeStandardEncoding code point.
func StandardEncodingRune(code byte) rune {
	if code >= 0x20 && code <= 0x7E {
		return rune(code)
	}
	if r, ok := standardEncodingHigh[code]; ok {
		return r
	}
	return 0
}

// macExpertEncodingHigh is a small, intentionally partial table: expert
// encoding (small caps/old-style figures) is rare in the retrieved corpus
// and the font subsystem only needs a priority-2 fallback, not a
// complete rendition.
var macExpertEncodingHigh = map[byte]rune{
	0x20: 0x0020, 0x21: 0xF721, 0x22: 0xF6F8, 0x27: 0xF7A5, 0x2C: 0xF7A2,
}

// MacExpertEncodingRune decodes one MacExpertEncoding code point.
func MacExpertEncodingRune(code byte) rune {
	if r, ok := macExpertEncodingHigh[code]; ok {
		return r
	}
	return 0
}

// adobeGlyphList maps common Adobe glyph names to Unicode, for resolving
// a font's /Encoding /Differences array.
// This is a working subset covering Latin text, punctuation, and the
// ligatures that show up in embedded subset fonts; an exhaustive ~4,300
// entry AGL was not worth hand-copying for a module with no network
// access to fetch the canonical table at build time.
var adobeGlyphList = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=', "greater": '>',
	"question": '?', "at": '@', "bracketleft": '[', "backslash": '\\',
	"bracketright": ']', "asciicircum": '^', "underscore": '_', "grave": '`',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"fi": 0xFB01, "fl": 0xFB02, "emdash": 0x2014, "endash": 0x2013,
	"quoteleft": 0x2018, "quoteright": 0x2019, "quotedblleft": 0x201C,
	"quotedblright": 0x201D, "bullet": 0x2022, "ellipsis": 0x2026,
	"trademark": 0x2122, "dagger": 0x2020, "daggerdbl": 0x2021,
	"florin": 0x0192, "section": 0x00A7, "paragraph": 0x00B6,
	"copyright": 0x00A9, "registered": 0x00AE, "degree": 0x00B0,
	"plusminus": 0x00B1, "divide": 0x00F7, "multiply": 0x00D7,
	"Euro": 0x20AC, "sterling": 0x00A3, "yen": 0x00A5, "cent": 0x00A2,
	"germandbls": 0x00DF, "AE": 0x00C6, "ae": 0x00E6, "OE": 0x0152,
	"oe": 0x0153, "Oslash": 0x00D8, "oslash": 0x00F8, "Aring": 0x00C5,
	"aring": 0x00E5, "ntilde": 0x00F1, "Ntilde": 0x00D1,
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		adobeGlyphList[string(c)] = c
	}
	for c := 'a'; c <= 'z'; c++ {
		adobeGlyphList[string(c)] = c
	}
}

// GlyphNameToRune resolves an Adobe glyph name, including the "uniXXXX"
// and "uXXXX" escapes ISO 32000 Annex D defines for names outside the
// list.
func GlyphNameToRune(name string) (rune, bool) {
	if r, ok := adobeGlyphList[name]; ok {
		return r, true
	}
	if len(name) >= 7 && name[:3] == "uni" {
		if v, ok := parseHexRune(name[3:7]); ok {
			return v, true
		}
	}
	if len(name) >= 5 && name[0] == 'u' {
		if v, ok := parseHexRune(name[1:]); ok {
			return v, true
		}
	}
	return 0, false
}

func parseHexRune(s string) (rune, bool) {
	var v rune
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= rune(c - '0')
		case c >= 'A' && c <= 'F':
			v |= rune(c-'A') + 10
		case c >= 'a' && c <= 'f':
			v |= rune(c-'a') + 10
		default:
			return 0, false
		}
	}
	return v, true
}

package pdf

import "strings"

// ToUnicodeCMap holds a font's /ToUnicode mapping, code → Unicode,
// distinguishing single-character entries (priority 1 of the CharMap
// chain) from multi-character ones (priority 4).
type ToUnicodeCMap struct {
	single map[uint32]rune // exactly one source byte-width, one dest rune
	multi map[uint32]string // bfrange/bfchar entries mapping to >1 rune
}

// ParseToUnicodeCMap parses a ToUnicode CMap stream's bfchar/bfrange
// sections.
func ParseToUnicodeCMap(data []byte) *ToUnicodeCMap {
	cm := &ToUnicodeCMap{single: make(map[uint32]rune), multi: make(map[uint32]string)}

	var inBfChar, inBfRange bool
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.Contains(line, "beginbfchar"):
			inBfChar = true
			continue
		case strings.Contains(line, "endbfchar"):
			inBfChar = false
			continue
		case strings.Contains(line, "beginbfrange"):
			inBfRange = true
			continue
		case strings.Contains(line, "endbfrange"):
			inBfRange = false
			continue
		}

		if inBfChar {
			cm.parseBfChar(line)
		} else if inBfRange {
			cm.parseBfRange(line)
		}
	}

	return cm
}

func (cm *ToUnicodeCMap) parseBfChar(line string) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return
	}
	src := parseHexBytes(parts[0])
	dst := parseHexBytes(parts[1])
	if len(src) == 0 || len(dst) == 0 {
		return
	}

	code := bytesToCode(src)
	cm.record(code, dst)
}

func (cm *ToUnicodeCMap) parseBfRange(line string) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return
	}
	start := parseHexBytes(parts[0])
	end := parseHexBytes(parts[1])
	if len(start) == 0 || len(end) == 0 {
		return
	}
	startCode, endCode := bytesToCode(start), bytesToCode(end)

	if strings.HasPrefix(parts[2], "[") {
		startIdx := strings.Index(line, "[")
		endIdx := strings.LastIndex(line, "]")
		if startIdx < 0 || endIdx < 0 || startIdx >= endIdx {
			return
		}
		code := startCode
		for _, elem := range strings.Fields(line[startIdx+1 : endIdx]) {
			if code > endCode {
				break
			}
			if dst := parseHexBytes(elem); len(dst) > 0 {
				cm.record(code, dst)
			}
			code++
		}
		return
	}

	dst := parseHexBytes(parts[2])
	if len(dst) == 0 {
		return
	}
	base := runesFromBytes(dst)
	if len(base) != 1 {
		// A multi-rune base destination still increments only the last
		// rune across the range, per the CMap bfrange rule.
		for code := startCode; code <= endCode; code++ {
			cm.multi[code] = string(base)
			base[len(base)-1]++
		}
		return
	}
	r := base[0]
	for code := startCode; code <= endCode; code++ {
		cm.single[code] = r
		r++
	}
}

func (cm *ToUnicodeCMap) record(code uint32, dst []byte) {
	runes := runesFromBytes(dst)
	switch len(runes) {
	case 0:
		return
	case 1:
		cm.single[code] = runes[0]
	default:
		cm.multi[code] = string(runes)
	}
}

// SingleRune returns the single-character mapping for code, if any
// (priority 1 of the CharMap chain).
func (cm *ToUnicodeCMap) SingleRune(code uint32) (rune, bool) {
	if cm == nil {
		return 0, false
	}
	r, ok := cm.single[code]
	return r, ok
}

// MultiString returns the multi-character mapping for code, if any
// (priority 4 of the CharMap chain).
func (cm *ToUnicodeCMap) MultiString(code uint32) (string, bool) {
	if cm == nil {
		return "", false
	}
	s, ok := cm.multi[code]
	return s, ok
}

func bytesToCode(b []byte) uint32 {
	var code uint32
	for _, x := range b {
		code = code<<8 | uint32(x)
	}
	return code
}

func runesFromBytes(b []byte) []rune {
	switch {
	case len(b) == 0:
		return nil
	case len(b) == 1:
		return []rune{rune(b[0])}
	case len(b)%2 == 0:
		var runes []rune
		for i := 0; i+1 < len(b); i += 2 {
			u := uint16(b[i])<<8 | uint16(b[i+1])
			if u >= 0xD800 && u <= 0xDBFF && i+3 < len(b) {
				lo := uint16(b[i+2])<<8 | uint16(b[i+3])
				if lo >= 0xDC00 && lo <= 0xDFFF {
					runes = append(runes, 0x10000+(rune(u)-0xD800)*0x400+(rune(lo)-0xDC00))
					i += 2
					continue
				}
			}
			runes = append(runes, rune(u))
		}
		return runes
	default:
		return []rune{rune(b[0])}
	}
}

func parseHexBytes(s string) []byte {
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	if len(s)%2 != 0 {
		s += "0"
	}
	out := make([]byte, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		var v byte
		for _, c := range s[i : i+2] {
			v <<= 4
			switch {
			case c >= '0' && c <= '9':
				v |= byte(c - '0')
			case c >= 'a' && c <= 'f':
				v |= byte(c-'a') + 10
			case c >= 'A' && c <= 'F':
				v |= byte(c-'A') + 10
			default:
				return nil
			}
		}
		out = append(out, v)
	}
	return out
}

// CIDSystemInfo identifies a composite font's character collection.
type CIDSystemInfo struct {
	Registry string
	Ordering string
	Supplement int
}

// ResolveCIDSystemInfo reads /CIDSystemInfo from the font dict or its
// first descendant font.
func ResolveCIDSystemInfo(fontDict Dictionary, doc *Document) CIDSystemInfo {
	if info, ok := cidSystemInfoFrom(fontDict, doc); ok {
		return info
	}
	if descArr, ok := fontDict.GetArray("DescendantFonts"); ok && len(descArr) > 0 {
		if descObj, err := doc.ResolveObject(descArr[0]); err == nil {
			if desc, ok := descObj.(Dictionary); ok {
				if info, ok := cidSystemInfoFrom(desc, doc); ok {
					return info
				}
			}
		}
	}
	return CIDSystemInfo{}
}

func cidSystemInfoFrom(dict Dictionary, doc *Document) (CIDSystemInfo, bool) {
	ref := dict.Get("CIDSystemInfo")
	if ref == nil {
		return CIDSystemInfo{}, false
	}
	obj, err := doc.ResolveObject(ref)
	if err != nil {
		return CIDSystemInfo{}, false
	}
	sysInfo, ok := obj.(Dictionary)
	if !ok {
		return CIDSystemInfo{}, false
	}
	info := CIDSystemInfo{}
	if reg, ok := sysInfo.GetString("Registry"); ok {
		info.Registry = reg.Text()
	}
	if ord, ok := sysInfo.GetString("Ordering"); ok {
		info.Ordering = ord.Text()
	}
	if supp, ok := sysInfo.GetInt("Supplement"); ok {
		info.Supplement = int(supp)
	}
	return info, true
}

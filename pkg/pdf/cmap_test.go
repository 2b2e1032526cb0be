package pdf

import "testing"

func TestParseToUnicodeCMapBfChar(t *testing.T) {
	data := []byte(`
1 beginbfchar
<0041> <0042>
<0043> <00440045>
endbfchar
`)
	cm := ParseToUnicodeCMap(data)

	r, ok := cm.SingleRune(0x0041)
	if !ok || r != 'B' {
		t.Errorf("code 0x41 = %q, %v; want 'B', true", r, ok)
	}
	s, ok := cm.MultiString(0x0043)
	if !ok || s != "DE" {
		t.Errorf("code 0x43 = %q, %v; want \"DE\", true", s, ok)
	}
}

func TestParseToUnicodeCMapBfRangeSingleRuneIncrements(t *testing.T) {
	data := []byte(`
1 beginbfrange
<0001> <0003> <0041>
endbfrange
`)
	cm := ParseToUnicodeCMap(data)

	for code, want := range map[uint32]rune{1: 'A', 2: 'B', 3: 'C'} {
		r, ok := cm.SingleRune(code)
		if !ok || r != want {
			t.Errorf("code %d = %q, %v; want %q, true", code, r, ok, want)
		}
	}
}

func TestParseToUnicodeCMapBfRangeArrayForm(t *testing.T) {
	data := []byte(`
1 beginbfrange
<0001> <0003> [<0041> <0042> <0043>]
endbfrange
`)
	cm := ParseToUnicodeCMap(data)

	for code, want := range map[uint32]rune{1: 'A', 2: 'B', 3: 'C'} {
		r, ok := cm.SingleRune(code)
		if !ok || r != want {
			t.Errorf("code %d = %q, %v; want %q, true", code, r, ok, want)
		}
	}
}

func TestToUnicodeCMapNilReceiverIsSafe(t *testing.T) {
	var cm *ToUnicodeCMap
	if _, ok := cm.SingleRune(1); ok {
		t.Error("nil CMap should report no mapping, not panic")
	}
	if _, ok := cm.MultiString(1); ok {
		t.Error("nil CMap should report no mapping, not panic")
	}
}

func TestParseHexBytesOddNibblePadsTrailingZero(t *testing.T) {
	got := parseHexBytes("<414>")
	want := []byte{0x41, 0x40}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRunesFromBytesSurrogatePair(t *testing.T) {
	// U+1F600 (grinning face) encoded as a UTF-16BE surrogate pair.
	b := []byte{0xD8, 0x3D, 0xDE, 0x00}
	runes := runesFromBytes(b)
	if len(runes) != 1 || runes[0] != 0x1F600 {
		t.Errorf("got %v, want single rune U+1F600", runes)
	}
}

func TestResolveCIDSystemInfoFromDescendantFont(t *testing.T) {
	doc := &Document{cache: newObjectCache()}
	descendant := Dictionary{
		"CIDSystemInfo": Dictionary{
			"Registry": String{Value: []byte("Adobe")},
			"Ordering": String{Value: []byte("Identity")},
			"Supplement": Integer(0),
		},
	}
	fontDict := Dictionary{
		"DescendantFonts": Array{descendant},
	}

	info := ResolveCIDSystemInfo(fontDict, doc)
	if info.Registry != "Adobe" || info.Ordering != "Identity" {
		t.Errorf("got %+v", info)
	}
}

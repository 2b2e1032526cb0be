package pdf

import "testing"

// newSimpleTestFont builds a minimal non-composite Font with a WinAnsi base
// encoding and no embedded program, enough to drive the CharMap priority
// chain's encoding-table step (priority 2).
func newSimpleTestFont() *Font {
	return &Font{
		Differences: map[byte]string{},
		BaseEncodingName: "WinAnsiEncoding",
		Widths: map[uint32]float64{},
	}
}

func TestCharMapResolvesViaBaseEncoding(t *testing.T) {
	font := newSimpleTestFont()
	cm := NewEmbeddingCharMap(font)

	text, ok := cm.Resolve(uint32('A'))
	if !ok || text != "A" {
		t.Fatalf("Resolve('A') = %q, %v; want \"A\", true", text, ok)
	}
}

func TestCharMapInvariantNoControlCharsAsTargets(t *testing.T) {
	font := newSimpleTestFont()
	// A WinAnsi font with no embedded program: codes below 0x20 decode
	// through Windows-1252 to control characters, and no glyph index is
	// known that could remap them into the Private Use Area.
	font.FontProgram = nil // no font-program cmap available
	cm := NewEmbeddingCharMap(font)

	if err := cm.Populate(); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	for code, entry := range cm.table {
		for _, r := range entry.text {
			if isControlRune(r) {
				t.Errorf("code %d resolved to control rune U+%04X", code, r)
			}
		}
	}
}

func TestCharMapPUAAllocationIsCollisionFree(t *testing.T) {
	font := &Font{
		Composite: true,
		Widths: map[uint32]float64{1: 500, 2: 500, 3: 500},
	}
	// Force codes 1, 2 and 3 to all resolve through the same glyph-index
	// path (glyphIndexFor returns code itself for composite fonts), but
	// collide on the same output rune by giving them an identical
	// single-rune ToUnicode mapping.
	font.ToUnicode = &ToUnicodeCMap{
		single: map[uint32]rune{1: 'X', 2: 'X', 3: 'X'},
	}

	cm := NewEmbeddingCharMap(font)
	if err := cm.Populate(); err != nil {
		t.Fatalf("Populate: %v", err)
	}

	seen := make(map[string]uint32)
	for _, code := range []uint32{1, 2, 3} {
		text, ok := cm.Resolve(code)
		if !ok {
			t.Fatalf("code %d did not resolve", code)
		}
		if other, taken := seen[text]; taken {
			t.Errorf("codes %d and %d both resolved to output %q, violating the per-glyph-index uniqueness invariant", other, code, text)
		}
		seen[text] = code
	}
}

func TestCharMapExtractionModeFirstWinsNoRemap(t *testing.T) {
	font := &Font{
		Composite: true,
		Widths: map[uint32]float64{1: 500, 2: 500},
		ToUnicode: &ToUnicodeCMap{
			single: map[uint32]rune{1: 'X', 2: 'X'},
		},
	}
	cm := NewExtractionCharMap(font)
	if err := cm.Populate(); err != nil {
		t.Fatalf("Populate: %v", err)
	}

	t1, _ := cm.Resolve(1)
	t2, _ := cm.Resolve(2)
	if t1 != "X" || t2 != "X" {
		t.Errorf("extraction mode should preserve duplicate output text, got %q and %q", t1, t2)
	}
}

func TestCharMapEmptyStringTarget(t *testing.T) {
	font := &Font{
		Composite: true,
		Widths: map[uint32]float64{1: 500},
		ToUnicode: &ToUnicodeCMap{
			single: map[uint32]rune{},
			multi: map[uint32]string{1: ""},
		},
	}
	cm := NewExtractionCharMap(font)
	text, ok := cm.Resolve(1)
	if !ok {
		t.Fatal("expected code 1 to resolve (to the empty string)")
	}
	if text != "" {
		t.Errorf("expected empty string, got %q", text)
	}
}

func TestCharMapSinglePopulationGuard(t *testing.T) {
	font := newSimpleTestFont()
	cm := NewEmbeddingCharMap(font)

	if err := cm.Populate(); err != nil {
		t.Fatalf("first Populate: %v", err)
	}
	tableLen := len(cm.table)
	if err := cm.Populate(); err != nil {
		t.Fatalf("second Populate: %v", err)
	}
	if len(cm.table) != tableLen {
		t.Errorf("second Populate should be a no-op after success")
	}
}

package pdf

import (
	"strings"
	"testing"
)

func TestFormatNumTrimsTrailingZeros(t *testing.T) {
	tests := []struct {
		in float64
		want string
	}{
		{0, "0"},
		{-0.0000001, "0"},
		{1, "1"},
		{1.5, "1.5"},
		{1.100000, "1.1"},
		{-3.25, "-3.25"},
	}
	for _, tt := range tests {
		if got := formatNum(tt.in); got != tt.want {
			t.Errorf("formatNum(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPathDataMoveLineCurveClose(t *testing.T) {
	p := &Path{
		Subpaths: []Subpath{
			{
				Segments: []Segment{
					{Type: SegMoveTo, X1: 0, Y1: 0},
					{Type: SegLineTo, X1: 10, Y1: 0},
					{Type: SegCurveTo, X1: 10, Y1: 5, X2: 5, Y2: 10, X3: 0, Y3: 10},
					{Type: SegClose},
				},
			},
		},
	}
	want := "M0,0 L10,0 C10,5 5,10 0,10 Z"
	if got := pathData(p); got != want {
		t.Errorf("pathData() = %q, want %q", got, want)
	}
}

func TestMatrixAttrIdentityOmitted(t *testing.T) {
	if got := matrixAttr(Identity); got != "" {
		t.Errorf("identity matrix should render as empty attribute, got %q", got)
	}
	got := matrixAttr(Matrix{2, 0, 0, 2, 5, 6})
	want := "matrix(2,0,0,2,5,6)"
	if got != want {
		t.Errorf("matrixAttr = %q, want %q", got, want)
	}
}

func TestColorToHex(t *testing.T) {
	if got := colorToHex(RGB{1, 0, 0}); got != "#ff0000" {
		t.Errorf("red: got %q", got)
	}
	if got := colorToHex(RGB{0, 0, 0}); got != "#000000" {
		t.Errorf("black: got %q", got)
	}
	// Out-of-range components are clamped rather than wrapping/panicking.
	if got := colorToHex(RGB{-1, 2, 0.5}); got != "#00ff80" {
		t.Errorf("clamped: got %q, want #00ff80", got)
	}
}

func TestRenderOmitsXMLDeclarationAndUsesPointSuffix(t *testing.T) {
	doc := newSVGDocument(100, 200)
	out := doc.Render()

	if len(out) >= 5 && out[:5] == "<?xml" {
		t.Error("Render() must not emit an XML declaration")
	}
	if !containsAll(out, `width="100pt"`, `height="200pt"`, `viewBox="0 0 100 200"`) {
		t.Errorf("Render() missing expected dimension attributes, got: %s", out)
	}
}

func TestRenderTspanTextContentIsPreserved(t *testing.T) {
	doc := newSVGDocument(50, 50)
	text := newNode("text")
	tspan := newNode("tspan")
	tspan.text = "Hello, world"
	text.append(tspan)
	doc.root.append(text)

	out := doc.Render()
	if !containsAll(out, "<tspan>Hello, world</tspan>") {
		t.Errorf("tspan text content was dropped from render output: %s", out)
	}
}

func TestRenderEmptyTspanTextIsStillAnElement(t *testing.T) {
	doc := newSVGDocument(50, 50)
	text := newNode("text")
	tspan := newNode("tspan")
	tspan.text = ""
	text.append(tspan)
	doc.root.append(text)

	out := doc.Render()
	if !containsAll(out, "<tspan></tspan>") {
		t.Errorf("empty tspan should still render as an open/close pair, got: %s", out)
	}
}

func TestAddFontFaceDedupesIdenticalProgramBytes(t *testing.T) {
	doc := newSVGDocument(10, 10)
	data := []byte{1, 2, 3, 4, 5}

	fam1 := doc.addFontFace("Helvetica", "font/ttf", "truetype", data)
	fam2 := doc.addFontFace("Helvetica", "font/ttf", "truetype", data)
	if fam1 != fam2 {
		t.Errorf("identical font program bytes should share one family name, got %q and %q", fam1, fam2)
	}

	fam3 := doc.addFontFace("Arial", "font/ttf", "truetype", []byte{9, 9, 9})
	if fam3 == fam1 {
		t.Error("distinct font program bytes should get distinct family names")
	}

	out := doc.Render()
	if !containsAll(out, "@font-face", fam1, fam3) {
		t.Errorf("rendered output missing expected @font-face rules: %s", out)
	}
}

func TestCSSIdentSafeStripsUnsafeChars(t *testing.T) {
	if got := cssIdentSafe("ABCD+Helvetica-Bold"); got != "ABCDHelvetica-Bold" {
		t.Errorf("got %q", got)
	}
	if got := cssIdentSafe("!!!"); got != "pdfFont" {
		t.Errorf("all-unsafe input should fall back to pdfFont, got %q", got)
	}
}

func containsAll(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

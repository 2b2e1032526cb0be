package pdf

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// svgNode is one element of the output tree the emitter builds and this
// file serializes. The tree is produced directly from interpreter draw
// calls; it is not an encoding/xml.Marshal target, since the
// output needs exact control over numeric formatting and whitespace
// inside <text> that the generic encoder does not give.
type svgNode struct {
	tag string
	attrs []svgAttr
	children []*svgNode
	text string // only meaningful for tag == "text" leaves (tspan content)
	selfEnd bool
}

type svgAttr struct {
	name string
	value string
}

func newNode(tag string) *svgNode { return &svgNode{tag: tag} }

func (n *svgNode) attr(name, value string) *svgNode {
	n.attrs = append(n.attrs, svgAttr{name, value})
	return n
}

func (n *svgNode) attrf(name, format string, args...interface{}) *svgNode {
	return n.attr(name, fmt.Sprintf(format, args...))
}

func (n *svgNode) append(child *svgNode) *svgNode {
	n.children = append(n.children, child)
	return n
}

// svgDocument is the root <svg> plus a deduplicated <defs> pool for
// clip-paths and embedded images, keyed by content hash so two identical
// clip outlines or raster images share one definition.
type svgDocument struct {
	width, height float64
	root *svgNode
	defs *svgNode
	defsByHash map[string]string // content hash -> assigned id
	nextDefID int

	style *svgNode
	fontFacesByHash map[string]string // font-program content hash -> assigned family name
	nextFontID int
}

func newSVGDocument(width, height float64) *svgDocument {
	defs := newNode("defs")
	return &svgDocument{
		width: width,
		height: height,
		root: newNode("svg"),
		defs: defs,
		defsByHash: make(map[string]string),
		fontFacesByHash: make(map[string]string),
	}
}

// addFontFace registers a `@font-face` rule embedding an font program as a
// base64 data URL, returning the CSS family name assigned to it. Identical
// program bytes (two resources pointing at the same embedded font) share one
// rule and one family name; hint is used to make the generated name
// readable, disambiguated with a counter suffix since two distinct fonts can
// share a BaseFont name (e.g. two different subsets both named "Helvetica").
func (doc *svgDocument) addFontFace(hint, mimeType, format string, data []byte) string {
	sum := sha256.Sum256(data)
	key := fmt.Sprintf("font:%x", sum)
	if family, ok := doc.fontFacesByHash[key]; ok {
		return family
	}

	doc.nextFontID++
	family := fmt.Sprintf("%s-pdf%d", cssIdentSafe(hint), doc.nextFontID)

	if doc.style == nil {
		doc.style = newNode("style")
	}
	uri := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	doc.style.text += fmt.Sprintf(
		"@font-face{font-family:\"%s\";src:url(%s) format(\"%s\");}\n",
		family, uri, format,
	)
	doc.fontFacesByHash[key] = family
	return family
}

// cssIdentSafe keeps only characters safe inside an unquoted CSS
// identifier fragment, so an embedded font's BaseFont name can't break out
// of the generated @font-face rule.
func cssIdentSafe(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "pdfFont"
	}
	return sb.String()
}

// internClipPath registers a clip path's <clipPath> definition, returning
// its id. Two calls with geometrically identical data (same formatted `d`
// and fill-rule) return the same id instead of duplicating the element.
func (doc *svgDocument) internClipPath(d string, evenOdd bool) string {
	rule := "nonzero"
	if evenOdd {
		rule = "evenodd"
	}
	key := "clip:" + rule + ":" + d
	if id, ok := doc.defsByHash[key]; ok {
		return id
	}
	id := doc.newDefID("clip")
	path := newNode("path").attr("d", d)
	if evenOdd {
		path.attr("clip-rule", "evenodd")
	}
	doc.defs.append(newNode("clipPath").attr("id", id).append(path))
	doc.defsByHash[key] = id
	return id
}

// internImage registers a base64 data-URI <image> definition, returning
// its id. Identical image bytes (the common case for a PDF page that
// tiles one small raster) share a definition.
func (doc *svgDocument) internImage(mimeType string, data []byte, width, height int) string {
	sum := sha256.Sum256(data)
	key := fmt.Sprintf("img:%x", sum)
	if id, ok := doc.defsByHash[key]; ok {
		return id
	}
	id := doc.newDefID("img")
	uri := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	// Geometry is the unit square: callers pre-compute a transform that
	// carries (0,0)-(1,1) to device space, so the def itself stays
	// resolution-independent and shareable across placements.
	img := newNode("image").
		attr("id", id).
		attr("width", "1").
		attr("height", "1").
		attr("href", uri).
		attr("preserveAspectRatio", "none")
	doc.defs.append(img)
	doc.defsByHash[key] = id
	return id
}

func (doc *svgDocument) newDefID(prefix string) string {
	doc.nextDefID++
	return fmt.Sprintf("%s%d", prefix, doc.nextDefID)
}

// Render serializes the document to an SVG 1.1 fragment (no XML
// declaration — the output is meant for inlining, not as a standalone
// document). Numbers use up to six fractional digits with trailing zeros
// trimmed, matching the precision the coordinate pipeline's float64 math
// actually carries meaningfully.
func (doc *svgDocument) Render() string {
	svg := doc.root
	svg.attr("xmlns", "http://www.w3.org/2000/svg")
	svg.attrf("width", "%spt", formatNum(doc.width))
	svg.attrf("height", "%spt", formatNum(doc.height))
	svg.attrf("viewBox", "0 0 %s %s", formatNum(doc.width), formatNum(doc.height))

	var sb strings.Builder
	if len(doc.defs.children) > 0 {
		svg.children = append([]*svgNode{doc.defs}, svg.children...)
	}
	if doc.style != nil {
		svg.children = append([]*svgNode{doc.style}, svg.children...)
	}
	writeNode(&sb, svg, 0)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *svgNode, depth int) {
	indent := strings.Repeat(" ", depth)
	sb.WriteString(indent)
	sb.WriteString("<")
	sb.WriteString(n.tag)
	for _, a := range n.attrs {
		sb.WriteString(" ")
		sb.WriteString(a.name)
		sb.WriteString("=\"")
		sb.WriteString(escapeAttr(a.value))
		sb.WriteString("\"")
	}

	if (n.tag == "text" || n.tag == "tspan") && len(n.children) == 0 {
		// A <text>/<tspan> leaf's whitespace is significant (word spacing
		// inside the run): never reindent or trim it the way element
		// children are, and never self-close even if the string is empty
		// (a ToUnicode mapping to the empty string is still a real,
		// present element — see charmap.go's empty-string target case).
		sb.WriteString(">")
		sb.WriteString(escapeText(n.text))
		sb.WriteString("</")
		sb.WriteString(n.tag)
		sb.WriteString(">\n")
		return
	}

	if n.tag == "style" {
		sb.WriteString(">")
		sb.WriteString(n.text)
		sb.WriteString("</style>\n")
		return
	}

	if len(n.children) == 0 && n.text == "" {
		sb.WriteString("/>\n")
		return
	}

	if n.tag == "text" {
		// A <text> element's children are tspans, and any whitespace
		// between them is interior character data: SVG's default
		// white-space processing renders it as a real space, shifting
		// every run after the first. Keep the whole subtree on one line.
		sb.WriteString(">")
		for _, c := range n.children {
			writeInlineNode(sb, c)
		}
		sb.WriteString("</")
		sb.WriteString(n.tag)
		sb.WriteString(">\n")
		return
	}

	sb.WriteString(">\n")
	for _, c := range n.children {
		writeNode(sb, c, depth+1)
	}
	sb.WriteString(indent)
	sb.WriteString("</")
	sb.WriteString(n.tag)
	sb.WriteString(">\n")
}

// writeInlineNode renders a node and its subtree with no surrounding
// whitespace, for use inside a <text> element where indentation and
// newlines would become significant character data.
func writeInlineNode(sb *strings.Builder, n *svgNode) {
	sb.WriteString("<")
	sb.WriteString(n.tag)
	for _, a := range n.attrs {
		sb.WriteString(" ")
		sb.WriteString(a.name)
		sb.WriteString("=\"")
		sb.WriteString(escapeAttr(a.value))
		sb.WriteString("\"")
	}

	if len(n.children) == 0 && n.text == "" && n.tag != "tspan" {
		sb.WriteString("/>")
		return
	}

	sb.WriteString(">")
	sb.WriteString(escapeText(n.text))
	for _, c := range n.children {
		writeInlineNode(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(n.tag)
	sb.WriteString(">")
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// formatNum renders a float with up to six fractional digits, trimming
// trailing zeros and a trailing decimal point.
func formatNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-0" {
		return "0"
	}
	return s
}

// pathData renders a Path to an SVG path `d` attribute value.
func pathData(p *Path) string {
	var sb strings.Builder
	for _, sp := range p.Subpaths {
		for i, seg := range sp.Segments {
			switch seg.Type {
			case SegMoveTo:
				fmt.Fprintf(&sb, "M%s,%s ", formatNum(seg.X1), formatNum(seg.Y1))
			case SegLineTo:
				fmt.Fprintf(&sb, "L%s,%s ", formatNum(seg.X1), formatNum(seg.Y1))
			case SegCurveTo:
				fmt.Fprintf(&sb, "C%s,%s %s,%s %s,%s ",
					formatNum(seg.X1), formatNum(seg.Y1),
					formatNum(seg.X2), formatNum(seg.Y2),
					formatNum(seg.X3), formatNum(seg.Y3))
			case SegClose:
				sb.WriteString("Z ")
			}
			_ = i
		}
	}
	return strings.TrimSpace(sb.String())
}

func colorToHex(c RGB) string {
	clampByte := func(v float64) int {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return int(v*255 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", clampByte(c.R), clampByte(c.G), clampByte(c.B))
}

// matrixAttr renders a Matrix as an SVG `matrix(a,b,c,d,e,f)` transform
// value, or "" for the identity (so callers can skip the attribute).
func matrixAttr(m Matrix) string {
	if m == Identity {
		return ""
	}
	return fmt.Sprintf("matrix(%s,%s,%s,%s,%s,%s)",
		formatNum(m[0]), formatNum(m[1]), formatNum(m[2]),
		formatNum(m[3]), formatNum(m[4]), formatNum(m[5]))
}

// sortedKeys is a small helper used by callers that need deterministic
// iteration over a map (Go map order is random; output SVGs should be
// byte-stable across runs for the same input).
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

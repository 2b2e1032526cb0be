package pdf

// svgEmitter implements Emitter, building an svgDocument tree from the
// interpreter's draw calls. It never touches document parsing
// or decoding directly; everything it needs (resolved colors, a ready
// Path, a DecodedImage) has already been computed by the interpreter.
type svgEmitter struct {
	doc *svgDocument
	stack []*svgNode // current append target; top of stack is innermost group
	extractor bool // true: resolve text via the extraction CharMap instead of embedding
	resolver FontResolverFunc
	families map[*Font]string
}

func newSVGEmitter(doc *svgDocument, resolver FontResolverFunc) *svgEmitter {
	return &svgEmitter{
		doc: doc,
		stack: []*svgNode{doc.root},
		resolver: resolver,
		families: make(map[*Font]string),
	}
}

func (e *svgEmitter) current() *svgNode { return e.stack[len(e.stack)-1] }

func (e *svgEmitter) BeginGroup(transform Matrix, clip *Path, clipEvenOdd bool, opacity float64) {
	g := newNode("g")
	if t := matrixAttr(transform); t != "" {
		g.attr("transform", t)
	}
	if clip != nil && !clip.Empty() {
		id := e.doc.internClipPath(pathData(clip), clipEvenOdd)
		g.attrf("clip-path", "url(#%s)", id)
	}
	if opacity < 1 {
		g.attr("opacity", formatNum(opacity))
	}
	e.current().append(g)
	e.stack = append(e.stack, g)
}

func (e *svgEmitter) EndGroup() {
	if len(e.stack) > 1 {
		e.stack = e.stack[:len(e.stack)-1]
	}
}

func (e *svgEmitter) Path(p *Path, paint PaintStyle) {
	if p.Empty() {
		return
	}
	node := newNode("path").attr("d", pathData(p))

	if paint.HasFill {
		node.attr("fill", colorToHex(paint.Fill))
		if paint.FillAlpha < 1 {
			node.attr("fill-opacity", formatNum(paint.FillAlpha))
		}
	} else {
		node.attr("fill", "none")
	}
	if paint.EvenOdd {
		node.attr("fill-rule", "evenodd")
	}

	if paint.HasStroke {
		node.attr("stroke", colorToHex(paint.Stroke))
		node.attr("stroke-width", formatNum(paint.LineWidth))
		if paint.StrokeAlpha < 1 {
			node.attr("stroke-opacity", formatNum(paint.StrokeAlpha))
		}
		if cap := svgLineCap(paint.LineCap); cap != "" {
			node.attr("stroke-linecap", cap)
		}
		if join := svgLineJoin(paint.LineJoin); join != "" {
			node.attr("stroke-linejoin", join)
			if join == "miter" && paint.MiterLimit > 0 {
				node.attr("stroke-miterlimit", formatNum(paint.MiterLimit))
			}
		}
		if len(paint.DashArray) > 0 {
			node.attr("stroke-dasharray", formatDashArray(paint.DashArray))
			if paint.DashPhase != 0 {
				node.attr("stroke-dashoffset", formatNum(paint.DashPhase))
			}
		}
	} else {
		node.attr("stroke", "none")
	}

	e.current().append(node)
}

func svgLineCap(cap int) string {
	switch cap {
	case 1:
		return "round"
	case 2:
		return "square"
	default:
		return "butt"
	}
}

func svgLineJoin(join int) string {
	switch join {
	case 1:
		return "round"
	case 2:
		return "bevel"
	default:
		return "miter"
	}
}

func formatDashArray(vals []float64) string {
	out := ""
	for i, v := range vals {
		if i > 0 {
			out += ","
		}
		out += formatNum(v)
	}
	return out
}

// Text renders one showing operator's runs as a single <text> element, one
// <tspan> per run, each offset by its DX (already scaled to text-space
// units by the interpreter). Glyph codes are resolved to output text here,
// against the run's font's embedding-mode CharMap, since the SVG surface
// always inlines glyphs rather than extracting plain text.
func (e *svgEmitter) Text(runs []TextRun, state TextState, transform Matrix) {
	font := state.Font
	if font == nil || len(runs) == 0 {
		return
	}

	node := newNode("text")
	if t := matrixAttr(transform); t != "" {
		node.attr("transform", t)
	}
	node.attrf("font-size", "%s", formatNum(state.FontSize))
	if state.Rise != 0 {
		node.attr("dy", formatNum(-state.Rise))
	}
	e.applyFontFamily(node, font)
	if state.RenderMode == 1 || state.RenderMode == 2 {
		node.attr("fill", "none")
		node.attr("stroke", "currentColor")
	}

	cm := font.CharMapForEmbedding()
	if e.extractor {
		cm = font.CharMapForExtraction()
	}

	any := false
	for _, run := range runs {
		text := resolveRunText(cm, run.Codes)
		if text == "" && run.DX == 0 {
			continue
		}
		tspan := newNode("tspan")
		if run.DX != 0 {
			tspan.attr("dx", formatNum(run.DX))
		}
		tspan.text = text
		node.append(tspan)
		any = true
	}
	if !any {
		return
	}
	e.current().append(node)
}

func resolveRunText(cm *CharMap, codes []uint32) string {
	var out []rune
	for _, code := range codes {
		if s, ok := cm.Resolve(code); ok {
			out = append(out, []rune(s)...)
		}
	}
	return string(out)
}

// applyFontFamily picks the font-family attribute for one text run: an
// @font-face-backed family when the font's program is embeddable, else the
// caller's FontResolver substitute, else a generic fallback keyed off the
// descriptor's Serif/FixedPitch flags.
func (e *svgEmitter) applyFontFamily(node *svgNode, font *Font) {
	family, bold, italic := e.familyForFont(font)
	node.attr("font-family", family)
	if bold {
		node.attr("font-weight", "bold")
	}
	if italic {
		node.attr("font-style", "italic")
	}
	node.attr("data-pdf-font", fontKindName(font.Kind))
}

func (e *svgEmitter) familyForFont(font *Font) (family string, bold, italic bool) {
	if f, ok := e.families[font]; ok {
		return f, font.Flags&(1<<18) != 0, font.Flags&(1<<6) != 0
	}

	if mime, format, ok := embeddableFontFormat(font); ok {
		family = e.doc.addFontFace(sanitizeFamilyName(font.BaseFont), mime, format, font.FontProgramBytes)
		e.families[font] = family
		return family, false, false
	}

	bold = font.Flags&(1<<18) != 0
	italic = font.Flags&(1<<6) != 0

	if e.resolver != nil {
		sub := e.resolver(FontDescriptor{BaseFont: font.BaseFont, Flags: font.Flags, Kind: font.Kind})
		if sub.Family != "" {
			e.families[font] = sub.Family
			return sub.Family, sub.Bold, sub.Italic
		}
	}

	family = genericFamily(font)
	e.families[font] = family
	return family, bold, italic
}

// embeddableFontFormat reports the @font-face src format for a font's
// embedded program, when one exists in a format this library can inline.
// Bare CFF (Type1C/CIDFontType0C, no OpenType wrapper) and Type 1 programs
// have no reliable @font-face encoding and are left to the resolver/generic
// fallback instead.
func embeddableFontFormat(font *Font) (mime, format string, ok bool) {
	if len(font.FontProgramBytes) == 0 {
		return "", "", false
	}
	switch font.FontProgramKey {
	case "FontFile2":
		return "font/ttf", "truetype", true
	case "FontFile3":
		if font.FontProgram != nil {
			return "font/otf", "opentype", true
		}
	}
	return "", "", false
}

func genericFamily(font *Font) string {
	switch {
	case font.Flags&1 != 0: // FixedPitch
		return "monospace"
	case font.Flags&(1<<1) != 0: // Serif
		return "serif"
	}
	switch font.Kind {
	case FontType1, FontMMType1, FontCIDType0:
		return "serif"
	default:
		return "sans-serif"
	}
}

// sanitizeFamilyName strips a subsetted embedded font's six-letter tag
// (e.g. "ABCDEF+Helvetica" -> "Helvetica") so the generated @font-face
// family name reads sensibly; falls back to a placeholder for untitled
// fonts.
func sanitizeFamilyName(base string) string {
	if len(base) > 7 && base[6] == '+' {
		base = base[7:]
	}
	if base == "" {
		return "pdfEmbeddedFont"
	}
	return base
}

// Image embeds a decoded raster as a <use> of a shared <defs> <image>
// spanning the unit square, positioned by transform (doImage already built
// transform to carry the unit square to device space, so no extra scaling
// is needed here). Image masks have PDF's current fill color baked
// directly into the PNG's pixels, since SVG's `fill` property has no
// effect on raster <image> content.
func (e *svgEmitter) Image(img *DecodedImage, fillColor RGB, transform Matrix) {
	bounds := img.Image.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return
	}

	var data []byte
	var err error
	if img.IsMask {
		data, err = encodeMaskPNG(img.Image, fillColor)
	} else {
		data, err = encodeImagePNG(img.Image)
	}
	if err != nil {
		return
	}

	id := e.doc.internImage("image/png", data, width, height)
	use := newNode("use").attrf("href", "#%s", id)
	if t := matrixAttr(transform); t != "" {
		use.attr("transform", t)
	}
	e.current().append(use)
}

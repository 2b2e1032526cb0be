package pdf

import (
	"errors"
	"os"
)

var errZeroSizedBox = errors.New("page has a zero-sized crop/media box")

// Options configures one page's conversion to SVG.
type Options struct {
	// MinStrokeWidth floors every stroked path's line width, working
	// around PDFs whose hairline strokes (width 0, meaning "thinnest
	// renderable line" in PDF) would otherwise vanish at typical SVG
	// viewer zoom levels. Zero disables flooring.
	MinStrokeWidth float64

	// IncludeHiddenText keeps text painted with render mode 3 (invisible,
	// the common OCR-layer-over-scanned-image pattern) in the output
	// instead of dropping it.
	IncludeHiddenText bool

	// FontResolver supplies a substitute family for fonts that carry no
	// embeddable program (or one this library can't embed, such as bare
	// CFF/Type1C). Nil means every unembedded font falls back to a
	// generic serif/sans-serif family picked from the font's descriptor.
	FontResolver FontResolverFunc

	// Cancel, when non-nil, lets a caller abort a long conversion; polled
	// between content-stream operators.
	Cancel <-chan struct{}
}

// FontDescriptor is the subset of a PDF font's identity FontResolver needs
// to pick a substitute: its declared name and descriptor flags (ISO 32000
// Table 123 — bit 1 FixedPitch, bit 2 Serif, bit 7 Italic, bit 19 ForceBold).
type FontDescriptor struct {
	BaseFont string
	Flags int
	Kind FontKind
}

// Serif reports whether the descriptor's /Flags bit 2 (Serif) is set.
func (d FontDescriptor) Serif() bool { return d.Flags&(1<<1) != 0 }

// FixedPitch reports whether the descriptor's /Flags bit 1 is set.
func (d FontDescriptor) FixedPitch() bool { return d.Flags&1 != 0 }

// Italic reports whether the descriptor's /Flags bit 7 (Italic) is set.
func (d FontDescriptor) Italic() bool { return d.Flags&(1<<6) != 0 }

// Bold reports whether the descriptor's /Flags bit 19 (ForceBold) is set.
func (d FontDescriptor) Bold() bool { return d.Flags&(1<<18) != 0 }

// FontSubstitute is a caller's answer to a FontResolver call: the CSS
// family name (and a couple of style hints) to use in place of an
// unembeddable font.
type FontSubstitute struct {
	Family string
	Bold bool
	Italic bool
}

// FontResolverFunc maps an unembeddable font's descriptor to a substitute.
// Returning a zero-value FontSubstitute (empty Family) tells the emitter to
// fall back to its own generic serif/sans-serif/monospace choice.
type FontResolverFunc func(FontDescriptor) FontSubstitute

// ConversionResult is one page's SVG output plus anything that went wrong
// along the way but did not abort the conversion.
type ConversionResult struct {
	SVG string
	Warnings []Warning
}

// ToSVG renders the page to SVG 1.1.
// The page's /CropBox (falling back to /MediaBox) becomes the SVG
// viewBox's origin and extent; /Rotate is applied to the output canvas,
// not baked into individual coordinates, so the emitted geometry stays
// legible if inspected independent of the rotation.
func (p *Page) ToSVG(opts *Options) (*ConversionResult, error) {
	if opts == nil {
		opts = &Options{}
	}

	box := p.CropBox
	if box.Width() <= 0 || box.Height() <= 0 {
		box = p.MediaBox
	}
	if box.Width() <= 0 || box.Height() <= 0 {
		return nil, &InvalidArgumentError{Arg: "page", Err: errInvalidPageBox}
	}

	outer, width, height := pageOuterTransform(box, p.Rotate)

	svgDoc := newSVGDocument(width, height)
	emitter := newSVGEmitter(svgDoc, opts.FontResolver)
	emitter.BeginGroup(outer, nil, false, 1.0)

	warningsBefore := len(p.doc.warnings)

	content, err := p.GetContents()
	if err != nil {
		return nil, err
	}

	interp := NewInterpreter(p.doc, p, emitter, opts)
	if err := interp.Run(content, p.Resources); err != nil {
		return nil, err
	}
	emitter.EndGroup()

	return &ConversionResult{
		SVG: svgDoc.Render(),
		Warnings: append([]Warning(nil), p.doc.warnings[warningsBefore:]...),
	}, nil
}

// SaveSVG renders the page and writes it to filename.
func (p *Page) SaveSVG(filename string, opts *Options) (*ConversionResult, error) {
	result, err := p.ToSVG(opts)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filename, []byte(result.SVG), 0o644); err != nil {
		return nil, err
	}
	return result, nil
}

var errInvalidPageBox = &MalformedError{Err: errZeroSizedBox}

// pageOuterTransform builds the single root-group transform that carries
// PDF user space (origin at the page box's lower-left corner, y increasing
// upward) to SVG device space (origin top-left, y increasing downward),
// with /Rotate applied as a canvas rotation.
func pageOuterTransform(box Rectangle, rotate int) (m Matrix, width, height float64) {
	w, h := box.Width(), box.Height()
	translate := Translate(-box.LLX, -box.LLY)
	flip := Matrix{1, 0, 0, -1, 0, h}

	var rot Matrix
	switch rotate {
	case 90:
		rot = Matrix{0, 1, -1, 0, h, 0}
		width, height = h, w
	case 180:
		rot = Matrix{-1, 0, 0, -1, w, h}
		width, height = w, h
	case 270:
		rot = Matrix{0, -1, 1, 0, 0, w}
		width, height = h, w
	default:
		rot = Identity
		width, height = w, h
	}

	return translate.Mul(flip).Mul(rot), width, height
}

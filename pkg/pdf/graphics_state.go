package pdf

// TextState holds the text-object parameters set by Tc/Tw/Tz/TL/Tf/Tr/Ts
// and the two text-positioning matrices.
type TextState struct {
	CharSpace float64
	WordSpace float64
	HorizScale float64 // Tz, percent (100 = no scaling)
	Leading float64
	Font *Font
	FontSize float64
	RenderMode int
	Rise float64
	TextMatrix Matrix
	LineMatrix Matrix
}

// GraphicsState is the full content-stream graphics state pushed/popped by
// q/Q: the CTM, paint/stroke parameters, color, clip, and a copy of the
// text state (restored verbatim, not re-entered, per PDF's rule that
// BT/ET do not interact with the q/Q stack).
type GraphicsState struct {
	CTM Matrix

	StrokeColorSpace ColorSpace
	FillColorSpace ColorSpace
	StrokeColor RGB
	FillColor RGB

	LineWidth float64
	LineCap int
	LineJoin int
	MiterLimit float64
	DashArray []float64
	DashPhase float64
	FillAlpha float64
	StrokeAlpha float64

	ClipPath *Path
	PendingClip *Path // set by W/W*, applied on the next path-painting op

	Text TextState
}

// NewGraphicsState returns the state PDF content streams start in: identity
// CTM, black fill/stroke in DeviceGray, 1-unit line width, opaque.
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM: Identity,
		StrokeColorSpace: ColorSpace{Kind: CSDeviceGray, Components: 1},
		FillColorSpace: ColorSpace{Kind: CSDeviceGray, Components: 1},
		LineWidth: 1,
		MiterLimit: 10,
		FillAlpha: 1,
		StrokeAlpha: 1,
		Text: TextState{
			HorizScale: 100,
			TextMatrix: Identity,
			LineMatrix: Identity,
		},
	}
}

// Clone deep-copies the state for q (dash array and clip path are not
// shared, since a nested state can independently replace either without
// mutating the parent's).
func (gs *GraphicsState) Clone() *GraphicsState {
	clone := *gs
	if gs.DashArray != nil {
		clone.DashArray = append([]float64(nil), gs.DashArray...)
	}
	if gs.ClipPath != nil {
		clipCopy := *gs.ClipPath
		clone.ClipPath = &clipCopy
	}
	clone.PendingClip = nil
	return &clone
}

// GraphicsStateStack implements q/Q: push duplicates the top, pop restores
// the previous entry.
type GraphicsStateStack struct {
	stack []*GraphicsState
}

func NewGraphicsStateStack() *GraphicsStateStack {
	return &GraphicsStateStack{stack: []*GraphicsState{NewGraphicsState()}}
}

func (s *GraphicsStateStack) Current() *GraphicsState {
	return s.stack[len(s.stack)-1]
}

func (s *GraphicsStateStack) Save() {
	s.stack = append(s.stack, s.Current().Clone())
}

// Restore pops the top state. Popping past the initial state is a no-op,
// matching the interpreter's lenient-on-malformed-content-stream policy.
func (s *GraphicsStateStack) Restore() {
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

package pdf

import "fmt"

// Warning records a recoverable problem encountered while processing a
// document or page: an unresolvable reference, an unsupported color space
// downgraded to a nearest supported one, an image codec that falls outside
// this module's scope, a content-stream operator the interpreter chose to
// skip.
type Warning struct {
	Kind string
	Message string
}

func (w Warning) String() string {
	if w.Kind == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// warningSink accumulates Warnings append-only; embedded by Document. The
// per-page conversion result holds a copy of the warnings its page added.
type warningSink struct {
	warnings []Warning
}

func (s *warningSink) warn(kind, format string, args...interface{}) {
	s.warnings = append(s.warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns the accumulated warnings in emission order.
func (s *warningSink) Warnings() []Warning {
	return s.warnings
}

// Package display provides the sink the sampler pushes formatted status
// text to, and a console implementation of it.
package display

// Sink accepts a single multi-line text update per call. The text is opaque
// to the sink and there is no feedback: a sink that cannot render an update
// drops it.
type Sink interface {
	Update(text string)
}

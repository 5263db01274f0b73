package translator

import "github.com/aluiziolira/go-wp2mdx/media"

// Alignment markers are prepended to the image title and read by the site's
// image component.
const (
	MarkerRight  = ">"
	MarkerLeft   = "<"
	MarkerCenter = "_"
)

const wideRatio = 1.5

// AlignmentState alternates floated images between right and left over the
// course of a run. The zero value starts on the right.
type AlignmentState struct {
	left bool
}

// Next returns the marker for an image with the given dimensions. Wide images
// are centered; everything else, including images of unknown size,
// alternates.
func (a *AlignmentState) Next(dims media.Dimensions, known bool) string {
	if known && dims.Ratio() > wideRatio {
		return MarkerCenter
	}
	marker := MarkerRight
	if a.left {
		marker = MarkerLeft
	}
	a.left = !a.left
	return marker
}

// Reset returns the state to its initial side.
func (a *AlignmentState) Reset() {
	a.left = false
}

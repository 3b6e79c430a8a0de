package components

import "strings"

// RenderScrollbar renders a 1-column vertical scrollbar for a list of
// contentHeight lines shown viewHeight at a time starting at yOffset.
// When everything fits, it renders a blank gutter so the layout width stays
// stable.
func RenderScrollbar(viewHeight, contentHeight, yOffset int) string {
	if viewHeight <= 0 {
		return ""
	}

	const (
		track = "│"
		thumb = "█"
	)

	if contentHeight <= viewHeight {
		return strings.Repeat(" \n", viewHeight-1) + " "
	}

	thumbSize := viewHeight * viewHeight / contentHeight
	if thumbSize < 1 {
		thumbSize = 1
	}

	maxYOffset := contentHeight - viewHeight
	thumbMaxTop := viewHeight - thumbSize

	thumbTop := 0
	if maxYOffset > 0 {
		thumbTop = yOffset * thumbMaxTop / maxYOffset
	}
	thumbTop = max(0, min(thumbTop, thumbMaxTop))

	var b strings.Builder
	for i := 0; i < viewHeight; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i >= thumbTop && i < thumbTop+thumbSize {
			b.WriteString(thumb)
		} else {
			b.WriteString(track)
		}
	}

	return b.String()
}

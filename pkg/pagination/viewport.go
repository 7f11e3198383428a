package pagination

// Viewport is the scroll position of the monitored result container.
type Viewport struct {
	ScrollTop     float64 `json:"scrollTop"`
	VisibleHeight float64 `json:"visibleHeight"`
	ScrollHeight  float64 `json:"scrollHeight"`
}

// ReachedBottom is true once the visible area touches the end of the scrollable content.
func (v Viewport) ReachedBottom() bool {
	return v.ScrollTop+v.VisibleHeight >= v.ScrollHeight
}

// ViewportMonitor produces viewport changes, for example from a scroll listener.
type ViewportMonitor interface {
	Viewports() <-chan Viewport
}

// ChannelMonitor is a ViewportMonitor fed by hand.
type ChannelMonitor chan Viewport

func (m ChannelMonitor) Viewports() <-chan Viewport {
	return m
}

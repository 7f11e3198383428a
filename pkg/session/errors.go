package session

import "errors"

var (
	ErrUnknownFacet   = errors.New("unknown facet")
	ErrInfiniteScroll = errors.New("numbered pages are not available with infinite scrolling")
	ErrNumberedPages  = errors.New("load more is not available with numbered pages")
	ErrClosed         = errors.New("session closed")
)

package protocol

// Event is one item on the client's ordered event stream. The concrete
// types are UpdateEvent, StyleEvent, ScrollToEvent and StatusEvent.
type Event interface {
	event()
}

// UpdateEvent carries the delta ops of one update notification.
type UpdateEvent struct {
	Update Update
}

// StyleEvent carries one style definition.
type StyleEvent struct {
	Style StyleParams
}

// ScrollToEvent asks the view to bring a line into view.
type ScrollToEvent struct {
	Line int
	Col  int
}

// StatusEvent reports a change in connection state.
type StatusEvent struct {
	Connected bool
	Err       error
}

func (UpdateEvent) event()   {}
func (StyleEvent) event()    {}
func (ScrollToEvent) event() {}
func (StatusEvent) event()   {}

package dom

// Event is a dispatched DOM event.
type Event struct {
	Type          string
	Bubbles       bool
	Detail        any
	Target        Node
	CurrentTarget Node

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string, bubbles bool) *Event {
	return &Event{Type: typ, Bubbles: bubbles}
}

// NewCustomEvent creates a bubbling event carrying detail.
func NewCustomEvent(typ string, detail any) *Event {
	return &Event{Type: typ, Bubbles: true, Detail: detail}
}

func (e *Event) PreventDefault()          { e.defaultPrevented = true }
func (e *Event) StopPropagation()         { e.stopped = true }
func (e *Event) DefaultPrevented() bool   { return e.defaultPrevented }
func (e *Event) PropagationStopped() bool { return e.stopped }

// standardEvents is the set of event names the in-memory document treats as
// built in, the equivalent of an "on<name>" member existing on window.
var standardEvents = map[string]bool{
	"abort": true, "blur": true, "cancel": true, "change": true, "click": true,
	"close": true, "contextmenu": true, "dblclick": true, "drag": true,
	"dragend": true, "dragenter": true, "dragleave": true, "dragover": true,
	"dragstart": true, "drop": true, "error": true, "focus": true,
	"focusin": true, "focusout": true, "input": true, "invalid": true,
	"keydown": true, "keypress": true, "keyup": true, "load": true,
	"mousedown": true, "mouseenter": true, "mouseleave": true,
	"mousemove": true, "mouseout": true, "mouseover": true, "mouseup": true,
	"pause": true, "play": true, "pointerdown": true, "pointerup": true,
	"reset": true, "resize": true, "scroll": true, "select": true,
	"submit": true, "toggle": true, "touchend": true, "touchstart": true,
	"wheel": true,
}

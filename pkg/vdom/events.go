package vdom

// event creates an EventHandler with the given name and handler.
func event(name string, handler any) EventHandler {
	return EventHandler{Event: name, Handler: handler}
}

// On handles any event by its exact name, including custom events such as
// "direct-upload:progress".
func On(name string, handler any) EventHandler { return event(name, handler) }

// Mouse events

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// Form events

// OnChange handles change events.
func OnChange(handler any) EventHandler { return event("change", handler) }

// OnInput handles input events.
func OnInput(handler any) EventHandler { return event("input", handler) }

// OnSubmit handles submit events.
func OnSubmit(handler any) EventHandler { return event("submit", handler) }

// Drag events

func OnDrag(handler any) EventHandler      { return event("drag", handler) }
func OnDragStart(handler any) EventHandler { return event("dragstart", handler) }
func OnDragEnd(handler any) EventHandler   { return event("dragend", handler) }
func OnDragEnter(handler any) EventHandler { return event("dragenter", handler) }
func OnDragOver(handler any) EventHandler  { return event("dragover", handler) }
func OnDragLeave(handler any) EventHandler { return event("dragleave", handler) }
func OnDrop(handler any) EventHandler      { return event("drop", handler) }

package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// createElement collects args into attrs and children and hands them to H.
// Arguments can be: nil, Attr, []Attr, Attrs, EventHandler, or any child H
// accepts.
func createElement(tag string, args []any) *VNode {
	var attrs Attrs
	set := func(key string, value any) {
		if attrs == nil {
			attrs = make(Attrs)
		}
		attrs[key] = value
	}
	children := make([]any, 0, len(args))

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			if v.Key != "" {
				set(v.Key, v.Value)
			}

		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					set(a.Key, a.Value)
				}
			}

		case Attrs:
			for k, val := range v {
				set(k, val)
			}

		case EventHandler:
			// The explicit "on-" form listens for exactly this event name.
			set("on-"+v.Event, v.Handler)

		default:
			children = append(children, v)
		}
	}

	return H(tag, attrs, children...)
}

// Host wraps a component render result so attributes apply to the host
// element itself.
func Host(args ...any) *VNode { return createElement(HostTag, args) }

// Slot creates a slot outlet. Children become its fallback content.
func Slot(args ...any) *VNode { return createElement(SlotTag, args) }

// El creates an element with an arbitrary tag, e.g. a custom element.
func El(tag string, args ...any) *VNode { return createElement(tag, args) }

// Content sectioning and text

func Div(args ...any) *VNode        { return createElement("div", args) }
func Span(args ...any) *VNode       { return createElement("span", args) }
func P(args ...any) *VNode          { return createElement("p", args) }
func A(args ...any) *VNode          { return createElement("a", args) }
func Strong(args ...any) *VNode     { return createElement("strong", args) }
func Em(args ...any) *VNode         { return createElement("em", args) }
func I(args ...any) *VNode          { return createElement("i", args) }
func B(args ...any) *VNode          { return createElement("b", args) }
func Ul(args ...any) *VNode         { return createElement("ul", args) }
func Li(args ...any) *VNode         { return createElement("li", args) }
func Figure(args ...any) *VNode     { return createElement("figure", args) }
func Figcaption(args ...any) *VNode { return createElement("figcaption", args) }
func H1(args ...any) *VNode         { return createElement("h1", args) }
func H2(args ...any) *VNode         { return createElement("h2", args) }
func Section(args ...any) *VNode    { return createElement("section", args) }

// Forms

func Form(args ...any) *VNode     { return createElement("form", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }
func Input(args ...any) *VNode    { return createElement("input", args) }
func Button(args ...any) *VNode   { return createElement("button", args) }
func Progress(args ...any) *VNode { return createElement("progress", args) }

// Media

func Img(args ...any) *VNode   { return createElement("img", args) }
func Video(args ...any) *VNode { return createElement("video", args) }

// SVG

func Svg(args ...any) *VNode           { return createElement("svg", args) }
func Use(args ...any) *VNode           { return createElement("use", args) }
func Path(args ...any) *VNode          { return createElement("path", args) }
func ForeignObject(args ...any) *VNode { return createElement("foreignObject", args) }

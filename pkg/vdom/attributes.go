package vdom

import (
	"strings"

	"github.com/vango-dev/bardfile/pkg/dom"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// ClassMap sets the class attribute from a class→condition map.
func ClassMap(classes map[string]bool) Attr { return attr("class", classes) }

// Style sets individual CSS properties; names may be camelCase or hyphenated.
func Style(props map[string]string) Attr {
	m := make(map[string]any, len(props))
	for k, v := range props {
		m[k] = v
	}
	return attr("style", m)
}

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Part sets the part attribute exposed to outer stylesheets.
func Part(name string) Attr { return attr("part", name) }

// Slots

// SlotName names a slot outlet.
func SlotName(name string) Attr { return attr("name", name) }

// InSlot assigns light content to a named slot.
func InSlot(name string) Attr { return attr("slot", name) }

// Ref registers a callback receiving the element after it is created and
// nil when it is removed.
func Ref(fn func(el dom.Element)) Attr { return attr("ref", fn) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", title) }

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// Links and media

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Download sets the download attribute.
func Download(filename ...string) Attr {
	if len(filename) > 0 {
		return attr("download", filename[0])
	}
	return attr("download", true)
}

// XLinkHref sets the xlink:href attribute of SVG elements.
func XLinkHref(url string) Attr { return attr("xlink:href", url) }

// Form attributes

func Name(name string) Attr     { return attr("name", name) }
func Value(value any) Attr      { return attr("value", value) }
func Type(t string) Attr        { return attr("type", t) }
func For(id string) Attr        { return attr("htmlFor", id) }
func Accept(types string) Attr  { return attr("accept", types) }
func Disabled(on bool) Attr     { return attr("disabled", on) }
func Required(on bool) Attr     { return attr("required", on) }
func Multiple(on bool) Attr     { return attr("multiple", on) }
func Placeholder(s string) Attr { return attr("placeholder", s) }
func Max(value any) Attr        { return attr("max", value) }

// Prop sets an arbitrary attribute or property.
func Prop(key string, v any) Attr { return attr(key, v) }

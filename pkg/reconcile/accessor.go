package reconcile

import (
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/vdom"
)

const captureSuffix = "Capture"

// updateElement applies the difference between the attrs of old and v to
// v's element. A shadow root stands for its host element.
func (c *renderContext) updateElement(old, v *vdom.VNode) {
	target := v.Elm
	if sr, ok := target.(dom.ShadowRoot); ok && sr.Host() != nil {
		target = sr.Host()
	}
	el, ok := dom.AsElement(target)
	if !ok {
		return
	}

	var oldAttrs vdom.Attrs
	if old != nil {
		oldAttrs = old.Attrs
	}
	for _, name := range sortedKeys(oldAttrs) {
		if _, ok := v.Attrs[name]; !ok {
			c.setAccessor(el, name, oldAttrs[name], nil, v.Host)
		}
	}
	for _, name := range sortedKeys(v.Attrs) {
		c.setAccessor(el, name, oldAttrs[name], v.Attrs[name], v.Host)
	}
}

func sortedKeys(attrs vdom.Attrs) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// setAccessor writes one attr. isHost marks the host element itself, whose
// attrs are reflected as attributes even when a property exists.
func (c *renderContext) setAccessor(el dom.Element, name string, oldV, newV any, isHost bool) {
	if vdom.AttrEqual(oldV, newV) {
		return
	}
	isProp := el.HasProperty(name)
	ln := strings.ToLower(name)

	switch {
	case name == "class":
		oldClasses, newClasses := parseClassList(oldV), parseClassList(newV)
		var removed, added []string
		for _, cl := range oldClasses {
			if !slices.Contains(newClasses, cl) {
				removed = append(removed, cl)
			}
		}
		for _, cl := range newClasses {
			if !slices.Contains(oldClasses, cl) {
				added = append(added, cl)
			}
		}
		if len(removed) > 0 {
			el.ClassList().Remove(removed...)
		}
		if len(added) > 0 {
			el.ClassList().Add(added...)
		}

	case name == "style":
		setStyle(el, oldV, newV)

	case name == "key":

	case name == "ref":
		if fn := toRef(newV); fn != nil {
			fn(el)
		}

	case !isProp && strings.HasPrefix(name, "on"):
		c.setListener(el, name, ln, oldV, newV)

	default:
		c.setMember(el, name, ln, isProp, oldV, newV, isHost)
	}
}

func (c *renderContext) setListener(el dom.Element, name, ln string, oldV, newV any) {
	var event string
	switch {
	case strings.HasPrefix(name, "on-"):
		// Explicit form: the rest is the exact event name.
		event = name[3:]
	case c.doc().IsStandardEvent(ln[2:]):
		event = ln[2:]
	case len(name) > 2:
		// Custom event: only the first letter is lowered.
		event = ln[2:3] + name[3:]
	}
	if oldV == nil && newV == nil {
		return
	}

	capture := strings.HasSuffix(event, captureSuffix)
	event = strings.TrimSuffix(event, captureSuffix)

	m := c.e.metaOf(el)
	if remove := m.listeners[name]; remove != nil {
		remove()
		delete(m.listeners, name)
	}
	if fn := toListener(newV); fn != nil {
		if m.listeners == nil {
			m.listeners = make(map[string]func())
		}
		m.listeners[name] = el.AddEventListener(event, capture, fn)
	}
}

func (c *renderContext) setMember(el dom.Element, name, ln string, isProp bool, oldV, newV any, isHost bool) {
	complexValue := isComplex(newV)
	if (isProp || (complexValue && newV != nil)) && !c.isSvg {
		if !strings.Contains(el.TagName(), "-") {
			var n any = ""
			if newV != nil {
				n = newV
			}
			if name == "list" {
				isProp = false
			} else if cur, _ := el.Property(name); oldV == nil || !looseEqual(cur, n) {
				// Read-only members fail; the write is skipped.
				_ = el.SetProperty(name, n)
			}
		} else {
			_ = el.SetProperty(name, newV)
		}
	}

	xlink := false
	if local := strings.TrimPrefix(ln, "xlink"); local != ln {
		name = strings.TrimPrefix(local, ":")
		xlink = true
	}

	if newV == nil || newV == false {
		if v, ok := el.GetAttribute(name); newV != false || (ok && v == "") {
			if xlink {
				el.RemoveAttributeNS(dom.XLinkNamespace, name)
			} else {
				el.RemoveAttribute(name)
			}
		}
		return
	}
	if (!isProp || isHost || c.isSvg) && !complexValue {
		s := dom.Stringify(newV)
		if newV == true {
			s = ""
		}
		if xlink {
			el.SetAttributeNS(dom.XLinkNamespace, "xlink:"+name, s)
		} else {
			el.SetAttribute(name, s)
		}
	}
}

func setStyle(el dom.Element, oldV, newV any) {
	if s, ok := newV.(string); ok {
		el.SetAttribute("style", s)
		return
	}
	if _, ok := oldV.(string); ok {
		el.RemoveAttribute("style")
		oldV = nil
	}
	oldStyle, newStyle := styleMap(oldV), styleMap(newV)
	st := el.Style()
	for _, prop := range sortedKeys(oldStyle) {
		if v, ok := newStyle[prop]; !ok || v == nil {
			st.RemoveProperty(prop)
		}
	}
	for _, prop := range sortedKeys(newStyle) {
		v := newStyle[prop]
		if old, ok := oldStyle[prop]; ok && vdom.AttrEqual(old, v) {
			continue
		}
		if v == nil {
			st.RemoveProperty(prop)
			continue
		}
		st.SetProperty(prop, dom.Stringify(v))
	}
}

func styleMap(v any) vdom.Attrs {
	switch s := v.(type) {
	case vdom.Attrs:
		return s
	case map[string]any:
		return s
	case map[string]string:
		out := make(vdom.Attrs, len(s))
		for k, val := range s {
			out[k] = val
		}
		return out
	}
	return nil
}

// parseClassList splits a class value into its non-empty tokens.
func parseClassList(v any) []string {
	if v == nil {
		return nil
	}
	return strings.Fields(dom.Stringify(v))
}

func toListener(v any) dom.Listener {
	switch fn := v.(type) {
	case dom.Listener:
		return fn
	case func(*dom.Event):
		return fn
	case func():
		return func(*dom.Event) { fn() }
	}
	return nil
}

func toRef(v any) func(dom.Element) {
	if fn, ok := v.(func(dom.Element)); ok {
		return fn
	}
	return nil
}

// isComplex reports whether v is neither nil nor a primitive. Complex values
// are only ever written as properties.
func isComplex(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return false
	}
	return true
}

// looseEqual compares a live property with the value about to be written,
// treating values with the same string form as equal.
func looseEqual(cur, next any) bool {
	return vdom.AttrEqual(cur, next) || dom.Stringify(cur) == dom.Stringify(next)
}

package bardfile

import (
	"fmt"

	"github.com/vango-dev/bardfile/pkg/component"
	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/reconcile"
	"github.com/vango-dev/bardfile/pkg/vdom"
)

const (
	hiddenInputStyle = "opacity: 0.01; position: absolute; z-index: -999"
	noPreviewText    = "This media does not offer a preview"
)

// Render implements component.Component: the drop zone with one figure per
// attached file. The light-DOM inputs are distributed into the leading
// default slot.
func (f *Field) Render() *vdom.VNode {
	f.mu.RLock()
	defer f.mu.RUnlock()

	figures := make([]*vdom.VNode, len(f.files))
	for i, file := range f.files {
		figures[i] = f.renderFile(file)
	}

	return vdom.Host(
		vdom.Slot(),
		vdom.Label(
			vdom.ClassMap(map[string]bool{"drag-media": true, "-dragover": f.highlighted}),
			vdom.OnClick(f.openFilePicker),
			vdom.OnDrag(halt),
			vdom.OnDragStart(halt),
			vdom.OnDragOver(f.highlight),
			vdom.OnDragEnter(f.highlight),
			vdom.OnDragLeave(f.unhighlight),
			vdom.OnDragEnd(f.unhighlight),
			vdom.OnDrop(f.drop),

			vdom.I(vdom.Class("drag-icon")),
			vdom.Strong("Choose ", vdom.Choose(f.Multiple, "files", "file"), " "),
			vdom.Span("or drag ", vdom.Choose(f.Multiple, "them", "it"), " here."),
			vdom.If(f.validationMessage != "",
				vdom.P(vdom.Class("validation-message"), vdom.Role("alert"), f.validationMessage)),

			vdom.Div(
				vdom.ClassMap(map[string]bool{"media-preview": true, "-stacked": f.Multiple}),
				figures,
			),
		),
	)
}

func (f *Field) renderFile(file File) *vdom.VNode {
	id := file.ID
	var title any
	if file.State == StateError && file.Error != "" {
		title = vdom.TitleAttr(file.Error)
	}

	return vdom.Figure(
		vdom.Key(id),
		vdom.Class(previewKind(file.MimeType)),
		vdom.Div(
			vdom.Class("direct-upload", "separate-upload", "direct-upload--"+file.State),
			title,
			vdom.Div(
				vdom.Class("direct-upload__progress"),
				vdom.Style(map[string]string{"width": fmt.Sprintf("%d%%", file.Percent)}),
			),
			vdom.Span(vdom.Class("direct-upload__filename"), file.Name),
		),
		vdom.A(
			vdom.Class("remove-media"),
			vdom.Href("#"),
			vdom.OnClick(func(ev *dom.Event) {
				ev.StopPropagation()
				ev.PreventDefault()
				f.removeByID(id)
			}),
			vdom.Span("Remove media"),
		),
		vdom.If(f.Preview, vdom.P(previewMedia(file))),
	)
}

func previewMedia(file File) any {
	switch previewKind(file.MimeType) {
	case "image-preview":
		return vdom.Img(vdom.Src(file.Src))
	case "video-preview":
		return vdom.Video(vdom.Src(file.Src))
	default:
		return noPreviewText
	}
}

// lightDOM holds the inputs the field keeps in its host's light DOM. Only
// the render goroutine touches it.
type lightDOM struct {
	file   dom.Element
	hidden []dom.Element
}

// WillRender implements component.WillRenderer.
func (f *Field) WillRender(h *component.Host) {
	f.renderLightDOM(h.Engine(), h.Element())
}

// renderLightDOM creates or updates the file input and the hidden inputs.
func (f *Field) renderLightDOM(eng *reconcile.Engine, host dom.Element) {
	f.mu.RLock()
	required := f.Required && len(f.files) == 0
	f.mu.RUnlock()

	l := &f.light
	if l.file == nil {
		l.file = eng.Document().CreateElement("input")
		l.file.SetAttribute("type", "file")
		l.file.SetAttribute("style", hiddenInputStyle)
		l.file.AddEventListener("change", false, f.fileTargetChanged)
		host.AppendChild(l.file)
	}
	setOptional(l.file, "id", f.OriginalID)
	setOptional(l.file, "data-direct-upload-url", f.DirectUploadURL)
	setFlag(l.file, "multiple", f.Multiple)
	setFlag(l.file, "required", required)

	f.writeSignedIDs(eng, host)
}

// WriteSignedIDs updates the hidden inputs to carry the signed ids of the
// attached files: one input per file, or a single empty one.
func (f *Field) WriteSignedIDs() {
	f.mu.RLock()
	h := f.host
	f.mu.RUnlock()
	if h == nil {
		return
	}
	f.writeSignedIDs(h.Engine(), h.Element())
}

func (f *Field) writeSignedIDs(eng *reconcile.Engine, host dom.Element) {
	ids := f.Value()
	want := max(len(ids), 1)

	l := &f.light
	for len(l.hidden) > want {
		last := l.hidden[len(l.hidden)-1]
		eng.RemoveSlotted(last)
		l.hidden = l.hidden[:len(l.hidden)-1]
	}
	for len(l.hidden) < want {
		in := eng.Document().CreateElement("input")
		in.SetAttribute("type", "hidden")
		host.AppendChild(in)
		l.hidden = append(l.hidden, in)
	}
	for i, in := range l.hidden {
		in.SetAttribute("name", f.Name)
		value := ""
		if i < len(ids) {
			value = ids[i]
		}
		setOptional(in, "value", value)
	}
}

func setOptional(el dom.Element, name, value string) {
	if value == "" {
		if el.HasAttribute(name) {
			el.RemoveAttribute(name)
		}
		return
	}
	if v, ok := el.GetAttribute(name); !ok || v != value {
		el.SetAttribute(name, value)
	}
}

func setFlag(el dom.Element, name string, on bool) {
	switch {
	case on && !el.HasAttribute(name):
		el.SetAttribute(name, "")
	case !on && el.HasAttribute(name):
		el.RemoveAttribute(name)
	}
}

package bardfile

import (
	"github.com/vango-dev/bardfile/pkg/dom"
)

// Direct-upload events dispatched on the host while a file uploads.
const (
	EventUploadInitialize = "direct-upload:initialize"
	EventUploadStart      = "direct-upload:start"
	EventUploadProgress   = "direct-upload:progress"
	EventUploadError      = "direct-upload:error"
	EventUploadEnd        = "direct-upload:end"
)

// UploadDetail is the detail of a direct-upload event.
type UploadDetail struct {
	FileID   string
	Progress int
	Error    string
	// SignedID is set on the end event of a successful upload.
	SignedID string
}

func halt(ev *dom.Event) {
	ev.PreventDefault()
	ev.StopPropagation()
}

func (f *Field) highlight(ev *dom.Event) {
	halt(ev)
	f.SetHighlighted(true)
}

func (f *Field) unhighlight(ev *dom.Event) {
	halt(ev)
	f.SetHighlighted(false)
}

// openFilePicker forwards a click on the drop zone to the file input.
func (f *Field) openFilePicker(ev *dom.Event) {
	if in := f.light.file; in != nil && ev.Target != in {
		in.DispatchEvent(dom.NewEvent("click", false))
	}
}

// drop hands dropped uploads to the file input as a change event.
func (f *Field) drop(ev *dom.Event) {
	f.unhighlight(ev)
	uploads, _ := ev.Detail.([]Upload)
	if in := f.light.file; in != nil && len(uploads) > 0 {
		change := dom.NewEvent("change", true)
		change.Detail = uploads
		in.DispatchEvent(change)
	}
}

func (f *Field) fileTargetChanged(ev *dom.Event) {
	uploads, _ := ev.Detail.([]Upload)
	if len(uploads) == 0 {
		return
	}
	f.AddUploads(uploads...)
}

// listen subscribes to the direct-upload events of el.
func (f *Field) listen(el dom.Element) []func() {
	handlers := map[string]func(UploadDetail){
		EventUploadInitialize: func(d UploadDetail) {
			f.updateFile(d.FileID, func(file *File) {
				file.State = StatePending
				file.Percent = 0
			})
		},
		EventUploadStart: func(d UploadDetail) {
			f.updateFile(d.FileID, func(file *File) { file.State = StatePending })
		},
		EventUploadProgress: func(d UploadDetail) {
			f.updateFile(d.FileID, func(file *File) { file.Percent = min(max(d.Progress, 0), 100) })
		},
		EventUploadError: func(d UploadDetail) {
			f.updateFile(d.FileID, func(file *File) {
				file.State = StateError
				file.Error = d.Error
			})
		},
		EventUploadEnd: func(d UploadDetail) {
			updated := f.updateFile(d.FileID, func(file *File) {
				if d.SignedID != "" {
					file.SignedID = d.SignedID
				}
				if file.State != StateError {
					file.State = StateComplete
					file.Percent = 100
				}
			})
			if updated {
				f.changed()
			}
		},
	}

	stops := make([]func(), 0, len(handlers))
	for name, handle := range handlers {
		stops = append(stops, el.AddEventListener(name, false, func(ev *dom.Event) {
			d, ok := ev.Detail.(UploadDetail)
			if !ok {
				return
			}
			if name == EventUploadError {
				ev.PreventDefault()
			}
			handle(d)
		}))
	}
	return stops
}

// Package templates provides starter projects for bardfile init.
//
// A template writes a bardfile.yaml next to a form.html holding one or more
// <bard-file> elements, ready for bardfile serve.
//
// # Available Templates
//
//   - single: One image field, e.g. an avatar
//   - gallery: Several images and videos in one field
//   - documents: Required PDF documents with an optional cover image
//
// # Usage
//
//	tmpl, err := templates.Get("gallery")
//	if err != nil {
//	    return err
//	}
//	if err := tmpl.Create(dir, templates.Config{Title: "Uploads"}); err != nil {
//	    return err
//	}
//
// # Template Variables
//
//	{{.Title}}         - Preview page title
//	{{.Store}}         - Blob store kind (memory, badger, s3)
//	{{.DirectUpload}}  - Direct upload URL of every field, omitted when empty
package templates

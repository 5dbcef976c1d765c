// Package bardfile implements the <bard-file> upload field as a component.
//
// A Field renders a drop zone into its host's shadow tree and keeps two
// kinds of light-DOM inputs next to it: a file input the browser picks files
// with, and hidden inputs carrying the signed ids of attached blobs, one per
// file. Files come from uploads (FileFromUpload), from markup
// (<uploaded-file> children) or from signed ids resolved through a
// blobs.Store.
//
// Register the element with a component registry:
//
//	reg := component.NewRegistry(sched)
//	reg.Define(bardfile.Definition(store))
//	hosts, err := reg.Upgrade(doc)
//
// Selected files are validated against the field's accepts list and max
// size before they are attached; see Field.CheckValidity.
package bardfile

// Package preview serves bard-file fields rendered into an in-memory
// document, so the widget can be exercised without a browser build.
//
// # Routes
//
//	GET    /                    page with the pre-rendered fields
//	GET    /state               files, value and validity of a field
//	POST   /files               attach picked files: {"files":[{"name","size","src"}]}
//	DELETE /files/{index}       detach the file at index
//	POST   /files/{id}/events   direct-upload event: {"event":"progress","progress":40}
//	GET    /live                WebSocket receiving the markup after each render
//	GET    /blobs/info/{id}     blob metadata, POST /blobs registers a blob
//	GET    /metrics             Prometheus metrics
//
// Field routes act on the first field unless ?field=<name> picks another.
// An "end" event without a signed id registers the file in the blob store
// and attaches the new signed id.
//
// # Concurrency
//
// The document is only touched while no render runs: handlers mutate it
// through Scheduler.Do and render with Scheduler.Flush, and snapshots are
// taken in a render hook.
package preview

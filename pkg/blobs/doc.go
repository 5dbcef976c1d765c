// Package blobs looks up the metadata of uploaded blobs by signed id.
//
// A bard-file field only keeps signed ids in its form value. When the field
// is given ids it asks a Store for the filename, content type and size of
// each blob so it can show them as already attached files.
//
// Stores:
//
//   - MemoryStore keeps blobs in a map, for tests and the preview server.
//   - BadgerStore persists blobs as JSON in a badger database.
//   - S3Store reads object metadata with HeadObject.
//   - CachedStore puts a TTL cache in front of any other store.
//
// Handler exposes a store over HTTP:
//
//	r.Mount("/blobs", blobs.Handler(store))
//
//	GET  /blobs/info/{signedID}  -> {"filename": ..., "content_type": ..., "byte_size": ..., "signed_id": ...}
//	POST /blobs                  -> registers {"blob": {...}} and returns it with a new signed id
package blobs

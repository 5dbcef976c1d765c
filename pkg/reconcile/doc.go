// Package reconcile patches a realized DOM tree so it matches a new VNode
// tree.
//
// The engine runs a double-ended keyed diff over child lists, synchronizes
// attributes, properties, classes, styles and listeners, and emulates slot
// projection for hosts rendered without a native shadow root: content
// written as the host's children is moved next to the slot outlet that
// claims it, and slot fallback content is shown only while nothing is
// distributed into its slot.
//
// All per-render state lives in a render context created by each call, and
// the Engine serializes renders on one document, so renders of different
// hosts never interleave.
//
//	eng := reconcile.New(doc)
//	host := reconcile.NewHostRef(el, false)
//	eng.Connect(host)
//	err := eng.RenderIntoHost(ctx, host, tree, true)
package reconcile

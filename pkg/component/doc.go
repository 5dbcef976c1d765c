// Package component hosts stateful components on elements of a document.
//
// A Component renders a vdom tree; a Host binds it to an element and a
// Scheduler batches update requests and renders them one at a time:
//
//	sched := component.NewScheduler(engine)
//	sched.Start(ctx)
//	defer sched.Close()
//
//	host := sched.Attach(el, field)
//	host.Connect()        // queues the first render
//	host.RequestUpdate()  // coalesced with any pending request
//
// A Registry maps custom element tags to constructors and upgrades every
// matching element of a tree, the way customElements.define does in a
// browser.
package component

package dom

import (
	"fmt"
	"sync"
)

// Op identifies the kind of a recorded mutation.
type Op int

const (
	OpCreate Op = iota
	OpInsert
	OpMove
	OpRemove
	OpSetAttribute
	OpRemoveAttribute
	OpAddClass
	OpRemoveClass
	OpSetStyle
	OpSetProperty
	OpSetText
	OpAddListener
	OpRemoveListener
	OpSetHidden
)

var opNames = [...]string{
	OpCreate:          "create",
	OpInsert:          "insert",
	OpMove:            "move",
	OpRemove:          "remove",
	OpSetAttribute:    "set-attribute",
	OpRemoveAttribute: "remove-attribute",
	OpAddClass:        "add-class",
	OpRemoveClass:     "remove-class",
	OpSetStyle:        "set-style",
	OpSetProperty:     "set-property",
	OpSetText:         "set-text",
	OpAddListener:     "add-listener",
	OpRemoveListener:  "remove-listener",
	OpSetHidden:       "set-hidden",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Mutation is one change applied to an in-memory document.
type Mutation struct {
	Op     Op
	Target Node
	Name   string
	Value  string
}

func (m Mutation) String() string {
	name := ""
	if m.Target != nil {
		name = m.Target.NodeName()
	}
	if m.Name == "" {
		return fmt.Sprintf("%s %s", m.Op, name)
	}
	return fmt.Sprintf("%s %s %s=%q", m.Op, name, m.Name, m.Value)
}

// Recorder collects the mutations of a MemoryDocument until stopped.
type Recorder struct {
	mu        sync.Mutex
	mutations []Mutation
	stop      func()
	fn        func(Mutation)
}

// Observable documents report their mutations as they happen.
type Observable interface {
	Observe(fn func(Mutation)) (stop func())
}

func (r *Recorder) add(m Mutation) {
	if r.fn != nil {
		r.fn(m)
		return
	}
	r.mu.Lock()
	r.mutations = append(r.mutations, m)
	r.mu.Unlock()
}

// Mutations returns a copy of everything recorded so far.
func (r *Recorder) Mutations() []Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Mutation(nil), r.mutations...)
}

// Count returns how many mutations of the given kinds were recorded.
func (r *Recorder) Count(ops ...Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.mutations {
		for _, op := range ops {
			if m.Op == op {
				n++
				break
			}
		}
	}
	return n
}

// Filter returns the recorded mutations of one kind.
func (r *Recorder) Filter(op Op) []Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Mutation
	for _, m := range r.mutations {
		if m.Op == op {
			out = append(out, m)
		}
	}
	return out
}

// Reset discards the recorded mutations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.mutations = nil
	r.mu.Unlock()
}

// Stop detaches the recorder from its document.
func (r *Recorder) Stop() {
	if r.stop != nil {
		r.stop()
	}
}

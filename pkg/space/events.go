package space

import "github.com/amebel/hyperon-experimental/pkg/atom"

// EventType identifies a kind of space modification.
type EventType string

const (
	EventAdd     EventType = "add"
	EventRemove  EventType = "remove"
	EventReplace EventType = "replace"
)

// Event describes a modification of a space.
type Event struct {
	// Type is the kind of modification.
	Type EventType

	// Atom is the atom added or removed, or the replaced atom.
	Atom atom.Atom

	// Replacement is the new atom of a replace event.
	Replacement atom.Atom
}

// Observer is notified after every modification of a space. Notify is called
// without the space lock held, so observers may query the space.
type Observer interface {
	Notify(event Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event Event)

// Notify calls f(event).
func (f ObserverFunc) Notify(event Event) {
	f(event)
}

// RegisterObserver subscribes o to modifications of the space. The returned
// function unsubscribes it.
func (s *GroundingSpace) RegisterObserver(o Observer) func() {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()
	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, registration{id: id, observer: o})

	return func() {
		s.observersMu.Lock()
		defer s.observersMu.Unlock()
		for i, r := range s.observers {
			if r.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

type registration struct {
	id       uint64
	observer Observer
}

func (s *GroundingSpace) notify(event Event) {
	s.observersMu.RLock()
	observers := s.observers
	s.observersMu.RUnlock()

	for _, r := range observers {
		r.observer.Notify(event)
	}
}

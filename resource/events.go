package resource

// EventKind names a change the server reports to its observers.
type EventKind string

const (
	ResourceAdded             EventKind = "resource-added"
	RemovingResource          EventKind = "removing-resource"
	TagsChanged               EventKind = "tags-changed"
	TagCategoryMembersChanged EventKind = "tag-category-members-changed"
)

type Event struct {
	Kind     EventKind `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Filename string    `json:"filename,omitempty"`
	Tag      string    `json:"tag,omitempty"`
}

// Subscribe registers fn for every event and returns a func that removes it.
func (s *Server) Subscribe(fn func(Event)) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Server) emit(ev Event) {
	s.obsMu.Lock()
	fns := make([]func(Event), 0, len(s.observers))
	for id := 0; id < s.nextObs; id++ {
		if fn, ok := s.observers[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

package history

// Seen is an insertion-ordered set of item identifiers.
type Seen struct {
	ids   []string
	index map[string]struct{}
}

func NewSeen(ids ...string) *Seen {
	s := &Seen{
		ids:   make([]string, 0, len(ids)),
		index: make(map[string]struct{}, len(ids)),
	}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add appends id unless it is empty or already present, in which case it
// keeps its original position. It reports whether id was added.
func (s *Seen) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

func (s *Seen) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

func (s *Seen) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns a copy of the identifiers, oldest first.
func (s *Seen) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Seen) Clone() *Seen {
	if s == nil {
		return NewSeen()
	}
	return NewSeen(s.ids...)
}

// Tail returns at most limit identifiers, the most recently added ones.
func Tail(ids []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(ids) <= limit {
		return ids
	}
	return ids[len(ids)-limit:]
}

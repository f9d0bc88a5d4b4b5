package pagination

// URLSet is an insertion-ordered set of URLs
type URLSet struct {
	items []string
	index map[string]struct{}
}

// NewURLSet creates an empty set
func NewURLSet() *URLSet {
	return &URLSet{index: make(map[string]struct{})}
}

// Add inserts u and reports whether it was new
func (s *URLSet) Add(u string) bool {
	if u == "" {
		return false
	}
	if _, ok := s.index[u]; ok {
		return false
	}
	s.index[u] = struct{}{}
	s.items = append(s.items, u)
	return true
}

// AddAll inserts every URL in order and returns how many were new
func (s *URLSet) AddAll(urls []string) int {
	added := 0
	for _, u := range urls {
		if s.Add(u) {
			added++
		}
	}
	return added
}

// Contains reports membership
func (s *URLSet) Contains(u string) bool {
	_, ok := s.index[u]
	return ok
}

// Len returns the number of URLs
func (s *URLSet) Len() int {
	return len(s.items)
}

// Items returns a copy of the URLs in first-seen order
func (s *URLSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

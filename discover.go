package brapi2isa

// OrderedSet is a set of strings which remembers insertion order.
type OrderedSet struct {
	items []string
	index map[string]struct{}
}

// NewOrderedSet gets a new, empty OrderedSet.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{index: make(map[string]struct{})}
}

// Add inserts v and reports whether it was new.
func (s *OrderedSet) Add(v string) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Contains reports whether v is in the set.
func (s *OrderedSet) Contains(v string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[v]
	return ok
}

// Len returns the number of items in the set.
func (s *OrderedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns a copy of the set's items in insertion order.
func (s *OrderedSet) Items() []string {
	if s == nil {
		return []string{}
	}
	ret := make([]string, len(s.items))
	copy(ret, s.items)
	return ret
}

// LevelSchema is the result of scanning a study's observation units: the
// levels seen, and per level the variable names and sub-level tokens in
// first-seen order.
type LevelSchema struct {
	Levels    []string
	Variables map[string]*OrderedSet
	Sublevels map[string]*OrderedSet
}

// VariablesOf returns the variable columns of level.
func (ls *LevelSchema) VariablesOf(level string) []string {
	return ls.Variables[level].Items()
}

// SublevelsOf returns the sub-level tokens of level.
func (ls *LevelSchema) SublevelsOf(level string) []string {
	return ls.Sublevels[level].Items()
}

func (ls *LevelSchema) level(name string) {
	if _, ok := ls.Variables[name]; ok {
		return
	}
	ls.Levels = append(ls.Levels, name)
	ls.Variables[name] = NewOrderedSet()
	ls.Sublevels[name] = NewOrderedSet()
}

// DiscoverLevels makes a single pass over units and records, for each
// effective level, the variable names observed and the sub-level tokens of
// its units' observationLevels. Only units with at least one observation
// contribute; a unit without observations can never produce a row. Variable
// names are kept verbatim.
func DiscoverLevels(units []ObservationUnit) *LevelSchema {
	ls := &LevelSchema{
		Levels:    []string{},
		Variables: make(map[string]*OrderedSet),
		Sublevels: make(map[string]*OrderedSet),
	}
	for i := range units {
		u := &units[i]
		if len(u.Observations) == 0 {
			continue
		}
		lvl := u.Level()
		ls.level(lvl)
		for _, obs := range u.Observations {
			ls.Variables[lvl].Add(obs.ObservationVariableName)
		}
		for _, tok := range u.LevelTokens() {
			ls.Sublevels[lvl].Add(tok.Token)
		}
	}
	return ls
}

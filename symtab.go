package rusmt

// SymbolTable is a per-frame bijection between user-visible Boolean names and
// the integer ids the solver works with. A name maps to exactly one id within
// the table it is set in; an id appears in at most one table.
type SymbolTable struct {
	byName map[string]uint32
	byID   map[uint32]string
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName: make(map[string]uint32),
		byID:   make(map[uint32]string),
	}
}

// GetID looks up the id bound to name in this table, reporting whether a
// binding exists.
func (s *SymbolTable) GetID(name string) (uint32, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// GetName looks up the name bound to id in this table.
func (s *SymbolTable) GetName(id uint32) (string, bool) {
	name, ok := s.byID[id]
	return name, ok
}

// SetID binds name to id, failing with ErrDuplicateSymbol if either side is
// already present in this table.
func (s *SymbolTable) SetID(name string, id uint32) error {
	if _, ok := s.byName[name]; ok {
		return ErrDuplicateSymbol
	}
	if _, ok := s.byID[id]; ok {
		return ErrDuplicateSymbol
	}
	s.byName[name] = id
	s.byID[id] = name
	return nil
}

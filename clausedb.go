package rusmt

// ClauseDatabase is an ordered, index-stable sequence of clauses. Learned
// clauses append to the end; preprocessing produces a brand new database
// rather than mutating this one in place.
type ClauseDatabase struct {
	clauses []Clause
}

// NewClauseDatabase returns an empty database.
func NewClauseDatabase() *ClauseDatabase {
	return &ClauseDatabase{}
}

// Append adds c to the end of the database and returns its (stable) index.
func (db *ClauseDatabase) Append(c Clause) int {
	db.clauses = append(db.clauses, c)
	return len(db.clauses) - 1
}

// Get returns the clause at index, which stays valid for the database's
// lifetime.
func (db *ClauseDatabase) Get(index int) Clause {
	return db.clauses[index]
}

// Len returns the number of clauses currently in the database.
func (db *ClauseDatabase) Len() int {
	return len(db.clauses)
}

// Iter returns a copy of the underlying clause slice for read-only iteration.
func (db *ClauseDatabase) Iter() []Clause {
	out := make([]Clause, len(db.clauses))
	copy(out, db.clauses)
	return out
}

// Clone returns a new database with the same clauses, decoupled from db so
// the preprocessor can rewrite it without touching the original.
func (db *ClauseDatabase) Clone() *ClauseDatabase {
	out := &ClauseDatabase{clauses: make([]Clause, len(db.clauses))}
	copy(out.clauses, db.clauses)
	return out
}

package rusmt

import "sort"

// Rename collects the distinct ids appearing across db's clauses, sorts them
// ascending, and remaps each to its rank in [0, n). It returns the rewritten
// database and the inverse table (dense rank -> original id) so a verdict
// reporter can translate back.
func Rename(db *ClauseDatabase) (*ClauseDatabase, []uint32) {
	idSet := make(map[uint32]struct{})
	for _, c := range db.Iter() {
		for _, lit := range c {
			idSet[lit.ID] = struct{}{}
		}
	}

	ids := make([]uint32, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rank := make(map[uint32]uint32, len(ids))
	for i, id := range ids {
		rank[id] = uint32(i)
	}

	out := NewClauseDatabase()
	for _, c := range db.Iter() {
		renamed := make(Clause, len(c))
		for i, lit := range c {
			renamed[i] = Literal{ID: rank[lit.ID], Polarity: lit.Polarity}
		}
		out.Append(renamed)
	}
	return out, ids
}

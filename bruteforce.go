package rusmt

// SolveBrute is a direct, non-learning reference solver: try each dense
// variable id true, recurse, and on failure flip to false. It is the BRUTE
// solver selector from the CLI surface, grounded on the recursive solve_i
// found in the undeveloped SATSolver of the original Rust source — unlike
// that draft, this version actually checks clauses against a partial
// assignment instead of assuming every variable is already bound.
func SolveBrute(db *ClauseDatabase, numVars int) Verdict {
	assignments := make(map[uint32]bool, numVars)
	if solveBruteFrom(db, numVars, 0, assignments) {
		out := make(map[uint32]bool, len(assignments))
		for id, v := range assignments {
			out[id] = v
		}
		return Verdict{Sat: true, assignments: out}
	}
	return Verdict{Sat: false}
}

func solveBruteFrom(db *ClauseDatabase, numVars, cur int, assignments map[uint32]bool) bool {
	if cur == numVars {
		return true
	}
	id := uint32(cur)
	for _, value := range [2]bool{true, false} {
		assignments[id] = value
		if bruteClausesConsistent(db, assignments) && solveBruteFrom(db, numVars, cur+1, assignments) {
			return true
		}
	}
	delete(assignments, id)
	return false
}

// bruteClausesConsistent reports whether every clause that is fully bound
// under assignments is satisfied; clauses with still-unbound literals are
// optimistically assumed satisfiable for now (same contract as the source's
// check_clause, which treats an absent assignment as "not yet falsifying").
func bruteClausesConsistent(db *ClauseDatabase, assignments map[uint32]bool) bool {
	for _, c := range db.Iter() {
		if !bruteClauseOK(c, assignments) {
			return false
		}
	}
	return true
}

func bruteClauseOK(c Clause, assignments map[uint32]bool) bool {
	for _, lit := range c {
		v, ok := assignments[lit.ID]
		if !ok || v == lit.Polarity {
			return true
		}
	}
	return false
}

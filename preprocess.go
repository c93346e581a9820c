package rusmt

// RemoveUnary is the unit-propagation preprocessor ("remove_unary" in the
// source). It repeatedly folds unit clauses into a partial assignment, drops
// clauses that assignment already satisfies, and strips falsified literals
// from the rest, until no unit clauses remain or a contradiction is found.
func RemoveUnary(db *ClauseDatabase) (*ClauseDatabase, error) {
	clauses := db.Iter()
	assign := make(map[uint32]bool)

	for {
		if contradicts(clauses, assign) {
			return nil, ErrTrivialUnsat
		}

		var units []Literal
		var rest []Clause
		for _, c := range clauses {
			if len(c) == 1 {
				units = append(units, c[0])
			} else {
				rest = append(rest, c)
			}
		}
		if len(units) == 0 {
			break
		}
		for _, u := range units {
			if v, ok := assign[u.ID]; ok && v != u.Polarity {
				return nil, ErrTrivialUnsat
			}
			assign[u.ID] = u.Polarity
		}

		rewritten := rest[:0:0]
		for _, c := range rest {
			satisfied := false
			var kept Clause
			for _, lit := range c {
				if v, ok := assign[lit.ID]; ok {
					if v == lit.Polarity {
						satisfied = true
						break
					}
					// falsified literal: drop it
					continue
				}
				kept = append(kept, lit)
			}
			if satisfied {
				continue
			}
			if len(kept) == 0 {
				return nil, ErrTrivialUnsat
			}
			rewritten = append(rewritten, kept)
		}
		clauses = rewritten
	}

	out := NewClauseDatabase()
	for id, v := range assign {
		out.Append(NewClause(Literal{ID: id, Polarity: v}))
	}
	for _, c := range clauses {
		out.Append(c)
	}
	return out, nil
}

// contradicts reports a trivial contradiction: an empty clause, or a unit
// clause that conflicts with an assignment already recorded.
func contradicts(clauses []Clause, assign map[uint32]bool) bool {
	for _, c := range clauses {
		if len(c) == 0 {
			return true
		}
		if len(c) == 1 {
			if v, ok := assign[c[0].ID]; ok && v != c[0].Polarity {
				return true
			}
		}
	}
	return false
}

// ClauseMinimization is the self-subsuming resolution pass ("clause_minimization"
// in the source). For each clause C and literal ℓ ∈ C, if some other clause D
// contains ¬ℓ with D \ {¬ℓ} ⊆ C, then ℓ is removable from C: resolving C with
// D on ℓ yields a strict subset of C, so C is subsumed by that resolvent.
// Literals are taken in order, and a D that contains ℓ itself or a literal
// already removed from C is not used, so every rewritten clause is still
// implied by the input. A clause emptied this way stays in the output as the
// empty clause.
func ClauseMinimization(db *ClauseDatabase) *ClauseDatabase {
	clauses := db.Iter()

	watch := make(map[Literal][]int)
	for i, c := range clauses {
		for _, lit := range c {
			watch[lit] = append(watch[lit], i)
		}
	}

	out := NewClauseDatabase()
	for i, c := range clauses {
		removable := make(map[Literal]struct{})
		for _, lit := range c {
			for _, j := range watch[lit.Not()] {
				if j == i {
					continue
				}
				d := clauses[j]
				usesRemoved := d.Contains(lit)
				for _, x := range d {
					if _, ok := removable[x]; ok {
						usesRemoved = true
					}
				}
				if !usesRemoved && subsetMinus(d, lit.Not(), c) {
					removable[lit] = struct{}{}
					break
				}
			}
		}
		var kept Clause
		for _, lit := range c {
			if _, drop := removable[lit]; !drop {
				kept = append(kept, lit)
			}
		}
		out.Append(kept)
	}
	return out
}

// subsetMinus reports whether d, with literal excl removed, is a subset of c.
func subsetMinus(d Clause, excl Literal, c Clause) bool {
	for _, lit := range d {
		if lit == excl {
			continue
		}
		if !c.Contains(lit) {
			return false
		}
	}
	return true
}

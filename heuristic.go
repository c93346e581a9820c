package rusmt

import "github.com/emirpasic/gods/sets/treeset"

// FrequencyHeuristic selects the next decision literal by descending
// usage-frequency, breaking ties by id then polarity. Frequencies accumulate
// monotonically (no decay), the degenerate VSIDS variant the source uses.
//
// Candidates are kept in a treeset.Set ordered ascending by
// (frequency, id, polarity) — the same ordered-set-as-priority-structure
// idiom the pack's LR table builder (npillmayer/gorgo) uses for its state
// worklist — so Next() is "pop the last element".
type FrequencyHeuristic struct {
	freq   map[Literal]int
	active *treeset.Set
}

func literalComparator(freq map[Literal]int) func(a, b interface{}) int {
	return func(a, b interface{}) int {
		la, lb := a.(Literal), b.(Literal)
		if d := freq[la] - freq[lb]; d != 0 {
			return d
		}
		if d := int(la.ID) - int(lb.ID); d != 0 {
			return d
		}
		return boolRank(la.Polarity) - boolRank(lb.Polarity)
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NewFrequencyHeuristic returns a heuristic with no registered variables.
func NewFrequencyHeuristic() *FrequencyHeuristic {
	freq := make(map[Literal]int)
	return &FrequencyHeuristic{
		freq:   freq,
		active: treeset.NewWith(literalComparator(freq)),
	}
}

// Register makes id eligible for selection (both polarities), at frequency 0
// if not already observed in some clause.
func (h *FrequencyHeuristic) Register(id uint32) {
	for _, lit := range [2]Literal{Lit(id), Lit(id).Not()} {
		if _, ok := h.freq[lit]; !ok {
			h.freq[lit] = 0
		}
		h.active.Add(lit)
	}
}

// Bump increments the usage count of every literal in lits, the way a newly
// committed clause (initial or learned) feeds the frequency table.
func (h *FrequencyHeuristic) Bump(lits []Literal) {
	for _, lit := range lits {
		wasActive := h.active.Contains(lit)
		if wasActive {
			h.active.Remove(lit)
		}
		h.freq[lit]++
		if wasActive {
			h.active.Add(lit)
		}
	}
}

// Assign removes both polarities of id from the candidate set once it has a
// value.
func (h *FrequencyHeuristic) Assign(id uint32) {
	h.active.Remove(Lit(id), Lit(id).Not())
}

// Unassign makes both polarities of id selectable again, e.g. after a
// backjump clears its assignment.
func (h *FrequencyHeuristic) Unassign(id uint32) {
	if _, ok := h.freq[Lit(id)]; !ok {
		h.freq[Lit(id)] = 0
	}
	if _, ok := h.freq[Lit(id).Not()]; !ok {
		h.freq[Lit(id).Not()] = 0
	}
	h.active.Add(Lit(id), Lit(id).Not())
}

// Next pops the highest-frequency candidate literal, or reports false if
// every registered variable is assigned.
func (h *FrequencyHeuristic) Next() (Literal, bool) {
	values := h.active.Values()
	if len(values) == 0 {
		return Literal{}, false
	}
	top := values[len(values)-1].(Literal)
	h.active.Remove(Lit(top.ID), Lit(top.ID).Not())
	return top, true
}

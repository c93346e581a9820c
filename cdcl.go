package rusmt

import (
	"context"
	"sort"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
)

// noAntecedent marks a decision variable's assignment (the spec's ⊥).
const noAntecedent = -1

// DefaultLog is the logger NewEngine attaches to every engine it builds. The
// CLI sets this once at startup from RUSMT_LOG; callers embedding the
// package can leave it nil to disable trace dumps entirely.
var DefaultLog *logrus.Logger

// Assignment records how a variable came to have its value: antecedent is
// the clause index that forced it via unit propagation, or noAntecedent if
// it was chosen by the decision heuristic.
type Assignment struct {
	Value      bool
	Antecedent int
	Level      int
}

// Engine is the CDCL search loop: decide -> propagate -> analyze-conflict ->
// backjump. It owns the trail, the (flat, map-based) implication graph, and
// the learned-clause database.
type Engine struct {
	db            *ClauseDatabase
	assignments   map[uint32]*Assignment
	decisionNodes []uint32 // decisionNodes[0] is an unused sentinel
	level         int
	heuristic     *FrequencyHeuristic

	// Log is used for trace-level assignment dumps during search; nil
	// disables logging entirely.
	Log *logrus.Logger
}

// NewEngine builds an engine over db (already preprocessed and renamed to a
// dense [0, numVars) id range). The initial clauses feed the frequency table
// before any variable is registered as a decision candidate.
func NewEngine(db *ClauseDatabase, numVars int) *Engine {
	e := &Engine{
		db:            db.Clone(),
		assignments:   make(map[uint32]*Assignment),
		decisionNodes: []uint32{0},
		heuristic:     NewFrequencyHeuristic(),
		Log:           DefaultLog,
	}
	for _, c := range e.db.Iter() {
		e.heuristic.Bump(c)
	}
	for id := 0; id < numVars; id++ {
		e.heuristic.Register(uint32(id))
	}
	return e
}

// Assignments exposes the final variable->value map after a solve. Only
// meaningful after Solve has returned Sat.
func (e *Engine) Assignments() map[uint32]bool {
	out := make(map[uint32]bool, len(e.assignments))
	for id, a := range e.assignments {
		out[id] = a.Value
	}
	return out
}

func (e *Engine) assign(id uint32, value bool, antecedent, level int) {
	e.assignments[id] = &Assignment{Value: value, Antecedent: antecedent, Level: level}
	e.heuristic.Assign(id)
}

// trace pretty-prints the current assignment map at logrus.TraceLevel,
// generalizing the unconditional pretty.Println(sv.unassigned) debug call
// the teacher leaves in its bcp() loop into a level-gated diagnostic.
func (e *Engine) trace(msg string) {
	if e.Log == nil || e.Log.GetLevel() < logrus.TraceLevel {
		return
	}
	e.Log.WithField("level", e.level).Trace(msg + ": " + pretty.Sprint(e.assignments))
}

// Solve runs the decide/propagate/analyze loop to completion. ctx is
// checked between decisions only, cooperative cancellation on top of an
// otherwise synchronous, non-suspending algorithm.
func (e *Engine) Solve(ctx context.Context) (Verdict, error) {
	if conflictIdx, conflict := e.propagate(); conflict {
		_ = conflictIdx
		return Verdict{Sat: false}, nil
	}

	for {
		select {
		case <-ctx.Done():
			return Verdict{}, ctx.Err()
		default:
		}

		lit, ok := e.heuristic.Next()
		if !ok {
			return Verdict{Sat: true, assignments: e.Assignments()}, nil
		}

		e.level++
		e.decisionNodes = append(e.decisionNodes, lit.ID)
		e.assign(lit.ID, lit.Polarity, noAntecedent, e.level)
		e.trace("decide")

		for {
			conflictIdx, conflict := e.propagate()
			if !conflict {
				break
			}
			ok := e.analyzeAndBackjump(conflictIdx)
			if !ok {
				return Verdict{Sat: false}, nil
			}
		}
	}
}

type clauseStatus struct {
	satisfied bool
	falsified bool
	isUnit    bool
	unit      Literal
}

func (e *Engine) analyzeClause(c Clause) clauseStatus {
	var unassigned []Literal
	for _, lit := range c {
		a, ok := e.assignments[lit.ID]
		if !ok {
			unassigned = append(unassigned, lit)
			continue
		}
		if a.Value == lit.Polarity {
			return clauseStatus{satisfied: true}
		}
	}
	switch len(unassigned) {
	case 0:
		return clauseStatus{falsified: true}
	case 1:
		return clauseStatus{isUnit: true, unit: unassigned[0]}
	default:
		return clauseStatus{}
	}
}

// propagate performs BCP: repeatedly scan all clauses for a conflict (lowest
// index wins, for reproducibility), then collect and apply every unit
// clause found in that same scan, restarting until nothing changes.
func (e *Engine) propagate() (int, bool) {
	for {
		n := e.db.Len()
		for i := 0; i < n; i++ {
			if e.analyzeClause(e.db.Get(i)).falsified {
				return i, true
			}
		}

		added := false
		for i := 0; i < n; i++ {
			st := e.analyzeClause(e.db.Get(i))
			if !st.isUnit {
				continue
			}
			if _, already := e.assignments[st.unit.ID]; already {
				continue
			}
			e.assign(st.unit.ID, st.unit.Polarity, i, e.level)
			added = true
		}
		if !added {
			return -1, false
		}
	}
}

// collectRoots walks the implication graph backward from the conflicting
// clause, visiting each assignment's antecedent clause and recursing into
// the antecedents of every literal in it, collecting the decision variables
// (⊥ antecedent) it bottoms out at.
func (e *Engine) collectRoots(conflictClause int) []uint32 {
	visitedClauses := make(map[int]bool)
	rootSet := make(map[uint32]bool)

	var visit func(idx int)
	visit = func(idx int) {
		if visitedClauses[idx] {
			return
		}
		visitedClauses[idx] = true
		for _, lit := range e.db.Get(idx) {
			a := e.assignments[lit.ID]
			if a.Antecedent == noAntecedent {
				rootSet[lit.ID] = true
				continue
			}
			visit(a.Antecedent)
		}
	}
	visit(conflictClause)

	roots := make([]uint32, 0, len(rootSet))
	for id := range rootSet {
		roots = append(roots, id)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}

// analyzeAndBackjump handles a conflict at conflictClause: it learns a
// clause from the decision roots, finds the highest decision level that
// agrees in polarity with the current (about-to-be-abandoned) decision, and
// backjumps there — unassigning that level's decision and everything
// derived from it, then reinstalling the decision with its polarity
// flipped. It reports false if no such level exists (Unsat).
func (e *Engine) analyzeAndBackjump(conflictClause int) bool {
	roots := e.collectRoots(conflictClause)
	if len(roots) == 0 {
		return false
	}

	learned := make(Clause, len(roots))
	for i, v := range roots {
		learned[i] = Literal{ID: v, Polarity: !e.assignments[v].Value}
	}
	learned = NewClause(learned...)
	e.db.Append(learned)
	e.heuristic.Bump(learned)

	curDecisionVar := e.decisionNodes[e.level]
	curPolarity := e.assignments[curDecisionVar].Value

	levels := make([]int, len(roots))
	for i, v := range roots {
		levels[i] = e.assignments[v].Level
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))

	newLevel := -1
	for _, lvl := range levels {
		dv := e.decisionNodes[lvl]
		if e.assignments[dv].Value == curPolarity {
			newLevel = lvl
			break
		}
	}
	if newLevel == -1 {
		return false
	}

	dv := e.decisionNodes[newLevel]
	oldValue := e.assignments[dv].Value

	// Clear the old decision itself along with everything derived from it
	// at newLevel, not just levels strictly above it — otherwise the
	// flipped decision's stale same-level consequences never get a chance
	// to re-propagate under the new polarity, and the conflict recurs
	// forever.
	for id, a := range e.assignments {
		if a.Level >= newLevel {
			delete(e.assignments, id)
			e.heuristic.Unassign(id)
		}
	}

	e.decisionNodes = e.decisionNodes[:newLevel+1]
	e.level = newLevel
	e.assign(dv, !oldValue, noAntecedent, newLevel)
	return true
}

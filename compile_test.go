package rusmt

import (
	"math/rand"
	"testing"
)

// compileAndSolve builds a fresh frame stack, asserts t, and reports whether
// the resulting clause set is satisfiable via the brute-force solver — the
// simplest oracle, independent of CDCL, for checking Tseitin equisatisfiability.
func compileAndSolve(t *testing.T, term Term) bool {
	t.Helper()
	frames := NewFrameStack()
	ids := NewIDAllocator()
	comp := NewCompiler(ids, frames, frames.Top().Clauses)
	if err := comp.Assert(term); err != nil {
		t.Fatalf("Assert(%v) returned error: %v", term, err)
	}
	return BruteSolve(frames.Flatten()).Sat
}

// evalTerm evaluates t directly over a name->value assignment, independent
// of any clausal encoding — the ground truth compileAndSolve is checked
// against.
func evalTerm(term Term, vals map[string]bool) bool {
	switch term.Op {
	case TermVar:
		return vals[term.Name]
	case TermNot:
		return !evalTerm(term.Args[0], vals)
	case TermAnd:
		return evalTerm(term.Args[0], vals) && evalTerm(term.Args[1], vals)
	case TermOr:
		return evalTerm(term.Args[0], vals) || evalTerm(term.Args[1], vals)
	case TermImplies:
		return !evalTerm(term.Args[0], vals) || evalTerm(term.Args[1], vals)
	case TermEq:
		return evalTerm(term.Args[0], vals) == evalTerm(term.Args[1], vals)
	case TermXor:
		return evalTerm(term.Args[0], vals) != evalTerm(term.Args[1], vals)
	default:
		panic("unreachable")
	}
}

// termVarNames collects the distinct variable names appearing in t, in
// first-seen order, for exhaustive assignment enumeration in tests.
func termVarNames(term Term) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Term)
	walk = func(t Term) {
		if t.Op == TermVar {
			if !seen[t.Name] {
				seen[t.Name] = true
				names = append(names, t.Name)
			}
			return
		}
		for _, a := range t.Args {
			walk(a)
		}
	}
	walk(term)
	return names
}

// isSatisfiable brute-force enumerates every assignment of t's variables.
func isSatisfiable(term Term) bool {
	names := termVarNames(term)
	n := len(names)
	for mask := 0; mask < 1<<uint(n); mask++ {
		vals := make(map[string]bool, n)
		for i, name := range names {
			vals[name] = mask&(1<<uint(i)) != 0
		}
		if evalTerm(term, vals) {
			return true
		}
	}
	return false
}

func TestCompileEquisatisfiabilityByConnective(t *testing.T) {
	p, q, r := Var("p"), Var("q"), Var("r")
	for _, tt := range []struct {
		name string
		term Term
	}{
		{"var", p},
		{"not", Not(p)},
		{"and-sat", And(p, q)},
		{"and-unsat", And(p, Not(p))},
		{"or", Or(p, q)},
		{"implies", Implies(p, q)},
		{"implies-unsat", And(p, And(Implies(p, q), Not(q)))},
		{"eq", Eq(p, q)},
		{"eq-unsat", And(Eq(p, q), Xor(p, q))},
		{"xor", Xor(p, q)},
		{"nested", Implies(And(p, q), Or(q, r))},
	} {
		t.Run(tt.name, func(t *testing.T) {
			want := isSatisfiable(tt.term)
			got := compileAndSolve(t, tt.term)
			if got != want {
				t.Fatalf("compileAndSolve(%v) = %v, want %v (isSatisfiable)", tt.term, got, want)
			}
		})
	}
}

// TestCompileEquisatisfiabilityRandomized is a scaled-down analogue of the
// teacher's makeRandomSat/TestRandomized: small random Boolean formulas,
// compared against the direct evaluator oracle.
func TestCompileEquisatisfiabilityRandomized(t *testing.T) {
	varNames := []string{"a", "b", "c", "d"}
	connectives := []func(a, b Term) Term{And, Or, Implies, Eq, Xor}

	randTerm := func(rng *rand.Rand, depth int) Term {
		var build func(d int) Term
		build = func(d int) Term {
			if d == 0 || rng.Intn(3) == 0 {
				name := varNames[rng.Intn(len(varNames))]
				if rng.Intn(2) == 0 {
					return Not(Var(name))
				}
				return Var(name)
			}
			c := connectives[rng.Intn(len(connectives))]
			return c(build(d-1), build(d-1))
		}
		return build(depth)
	}

	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		term := randTerm(rng, 3)
		want := isSatisfiable(term)
		got := compileAndSolve(t, term)
		if got != want {
			t.Fatalf("[seed=%d] compileAndSolve = %v, want %v for term %+v", seed, got, want, term)
		}
	}
}

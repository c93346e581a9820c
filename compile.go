package rusmt

import "github.com/pkg/errors"

// Connective enumerates the Boolean connectives the compiler understands.
type Connective int

const (
	TermVar Connective = iota
	TermAnd
	TermOr
	TermNot
	TermImplies
	TermEq
	TermXor
)

// Term is a Boolean-connective tree: either a variable reference (Op ==
// TermVar, Name set) or an application of a connective to Args.
type Term struct {
	Op   Connective
	Name string
	Args []Term
}

// Var builds a variable-reference term.
func Var(name string) Term { return Term{Op: TermVar, Name: name} }

// And, Or, Not, Implies, Eq and Xor build connective application terms. And
// and Or are curried to arity 2 by the caller, matching spec's requirement
// that n-ary and/or be curried before reaching the compiler.
func And(a, b Term) Term     { return Term{Op: TermAnd, Args: []Term{a, b}} }
func Or(a, b Term) Term      { return Term{Op: TermOr, Args: []Term{a, b}} }
func Not(a Term) Term        { return Term{Op: TermNot, Args: []Term{a}} }
func Implies(a, b Term) Term { return Term{Op: TermImplies, Args: []Term{a, b}} }
func Eq(a, b Term) Term      { return Term{Op: TermEq, Args: []Term{a, b}} }
func Xor(a, b Term) Term     { return Term{Op: TermXor, Args: []Term{a, b}} }

// Compiler performs Tseitin-style translation of Term trees into clauses
// appended to clauses, issuing fresh variable ids through ids and naming
// them (as "ts!<id>") in the current top frame's symbol table so every
// clause literal still resolves through it, per spec's invariant. Variable
// references are resolved across the whole visible frame stack, matching
// the symbol table's "lookups walk the frame stack from top to bottom"
// contract — a name declared in an ancestor frame must resolve to its
// existing id, not a fresh duplicate.
type Compiler struct {
	ids     *IDAllocator
	frames  *FrameStack
	clauses *ClauseDatabase
}

// NewCompiler returns a compiler that allocates fresh ids from ids, resolves
// and declares names against frames (always declaring into the current top
// frame), and emits clauses into clauses.
func NewCompiler(ids *IDAllocator, frames *FrameStack, clauses *ClauseDatabase) *Compiler {
	return &Compiler{ids: ids, frames: frames, clauses: clauses}
}

func (c *Compiler) fresh() (Literal, error) {
	id, err := c.ids.Next()
	if err != nil {
		return Literal{}, err
	}
	// Fresh Tseitin names use the "ts!" prefix. The script reader does not
	// reserve it, so a user symbol spelled ts!<id> in the top frame makes
	// SetID fail with ErrDuplicateSymbol.
	if err := c.frames.Top().Symbols.SetID(freshName(id), id); err != nil {
		return Literal{}, err
	}
	return Lit(id), nil
}

func freshName(id uint32) string {
	return "ts!" + itoa(id)
}

func itoa(id uint32) string {
	if id == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = byte('0' + id%10)
		id /= 10
	}
	return string(buf[i:])
}

// varLit resolves a variable term to its literal, searching the whole
// visible frame stack (top to bottom) before declaring it fresh in the top
// frame — so a name declared in an ancestor frame and referenced again in a
// descendant's assert resolves to its existing id rather than a duplicate.
func (c *Compiler) varLit(name string) (Literal, error) {
	if id, ok := c.frames.ResolveID(name); ok {
		return Lit(id), nil
	}
	id, err := c.ids.Next()
	if err != nil {
		return Literal{}, err
	}
	if err := c.frames.Top().Symbols.SetID(name, id); err != nil {
		return Literal{}, err
	}
	return Lit(id), nil
}

// Compile walks t and returns a literal ℓ such that ℓ ↔ t under every model
// satisfying the clauses this call appends.
func (c *Compiler) Compile(t Term) (Literal, error) {
	switch t.Op {
	case TermVar:
		return c.varLit(t.Name)
	case TermNot:
		if len(t.Args) != 1 {
			return Literal{}, errors.Wrap(ErrArity, "not")
		}
		a, err := c.Compile(t.Args[0])
		if err != nil {
			return Literal{}, err
		}
		return a.Not(), nil
	case TermAnd:
		return c.compileAnd(t)
	case TermOr:
		return c.compileOr(t)
	case TermImplies:
		return c.compileImplies(t)
	case TermEq:
		return c.compileEq(t)
	case TermXor:
		return c.compileXor(t)
	default:
		return Literal{}, errors.Wrap(ErrUnsupportedConnective, "compile")
	}
}

func (c *Compiler) args2(t Term) (Literal, Literal, error) {
	if len(t.Args) != 2 {
		return Literal{}, Literal{}, errors.Wrap(ErrArity, "binary connective")
	}
	a, err := c.Compile(t.Args[0])
	if err != nil {
		return Literal{}, Literal{}, err
	}
	b, err := c.Compile(t.Args[1])
	if err != nil {
		return Literal{}, Literal{}, err
	}
	return a, b, nil
}

// compileAnd emits {¬ℓ, a}, {¬ℓ, b} and {ℓ, ¬a, ¬b}, so ℓ ↔ (a ∧ b). Both
// directions are needed because ℓ may end up negated by an enclosing not.
func (c *Compiler) compileAnd(t Term) (Literal, error) {
	a, b, err := c.args2(t)
	if err != nil {
		return Literal{}, err
	}
	lit, err := c.fresh()
	if err != nil {
		return Literal{}, err
	}
	c.clauses.Append(NewClause(lit.Not(), a))
	c.clauses.Append(NewClause(lit.Not(), b))
	c.clauses.Append(NewClause(lit, a.Not(), b.Not()))
	return lit, nil
}

// compileOr emits {a, b, ¬ℓ}, {ℓ, ¬a} and {ℓ, ¬b}, so ℓ ↔ (a ∨ b).
func (c *Compiler) compileOr(t Term) (Literal, error) {
	a, b, err := c.args2(t)
	if err != nil {
		return Literal{}, err
	}
	lit, err := c.fresh()
	if err != nil {
		return Literal{}, err
	}
	c.clauses.Append(NewClause(a, b, lit.Not()))
	c.clauses.Append(NewClause(lit, a.Not()))
	c.clauses.Append(NewClause(lit, b.Not()))
	return lit, nil
}

// compileImplies emits {¬ℓ, ¬a, b}, {ℓ, a} and {ℓ, ¬b}, so ℓ ↔ (a ⇒ b).
func (c *Compiler) compileImplies(t Term) (Literal, error) {
	a, b, err := c.args2(t)
	if err != nil {
		return Literal{}, err
	}
	lit, err := c.fresh()
	if err != nil {
		return Literal{}, err
	}
	c.clauses.Append(NewClause(lit.Not(), a.Not(), b))
	c.clauses.Append(NewClause(lit, a))
	c.clauses.Append(NewClause(lit, b.Not()))
	return lit, nil
}

// compileEq composes and(implication(a,b), implication(b,a)).
func (c *Compiler) compileEq(t Term) (Literal, error) {
	if len(t.Args) != 2 {
		return Literal{}, errors.Wrap(ErrArity, "equality")
	}
	a, b := t.Args[0], t.Args[1]
	forward := Implies(a, b)
	backward := Implies(b, a)
	return c.Compile(And(forward, backward))
}

// compileXor composes equality(¬a, b).
func (c *Compiler) compileXor(t Term) (Literal, error) {
	if len(t.Args) != 2 {
		return Literal{}, errors.Wrap(ErrArity, "xor")
	}
	a, b := t.Args[0], t.Args[1]
	return c.Compile(Eq(Not(a), b))
}

// Assert compiles t's root term and appends the unit clause {ℓ_root}, forcing
// the asserted top-level term true.
func (c *Compiler) Assert(t Term) error {
	root, err := c.Compile(t)
	if err != nil {
		return err
	}
	c.clauses.Append(NewClause(root))
	return nil
}

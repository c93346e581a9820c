package rusmt

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Logic is the subset of (set-logic ...) values the core understands. Only
// QF_UF constraints actually reach the CDCL core; QF_LIA parses but
// contributes no clauses, matching §6 of the spec.
type Logic int

const (
	LogicQFUF Logic = iota
	LogicQFLIA
)

func parseLogic(name string) (Logic, error) {
	switch name {
	case "QF_UF":
		return LogicQFUF, nil
	case "QF_LIA":
		return LogicQFLIA, nil
	default:
		return 0, errors.Wrapf(ErrParse, "unsupported logic %q", name)
	}
}

// Solve runs a full check-sat over db's clauses (already flattened from the
// frame stack) and reports a verdict keyed by db's original variable ids.
type Solve func(db *ClauseDatabase) Verdict

// preprocessAndRename runs both preprocessing passes and the rename pass,
// reporting ok=false (with a Verdict already decided) if the preprocessor
// found a trivial contradiction.
func preprocessAndRename(db *ClauseDatabase) (dense *ClauseDatabase, inverse []uint32, verdict Verdict, ok bool) {
	pre, err := RemoveUnary(db)
	if err != nil {
		return nil, nil, Verdict{Sat: false}, false
	}
	pre = ClauseMinimization(pre)
	dense, inverse = Rename(pre)
	return dense, inverse, Verdict{}, true
}

// CDCLSolve preprocesses db, renames it, and runs the CDCL engine.
func CDCLSolve(db *ClauseDatabase) Verdict {
	dense, inverse, verdict, ok := preprocessAndRename(db)
	if !ok {
		return verdict
	}
	v, err := NewEngine(dense, len(inverse)).Solve(context.Background())
	if err != nil || !v.Sat {
		return Verdict{Sat: false}
	}
	return Verdict{Sat: true, assignments: remapByInverse(v.assignments, inverse)}
}

// BruteSolve preprocesses db, renames it, and runs the brute-force solver.
func BruteSolve(db *ClauseDatabase) Verdict {
	dense, inverse, verdict, ok := preprocessAndRename(db)
	if !ok {
		return verdict
	}
	v := SolveBrute(dense, len(inverse))
	if !v.Sat {
		return Verdict{Sat: false}
	}
	return Verdict{Sat: true, assignments: remapByInverse(v.assignments, inverse)}
}

// Context is the script dispatcher: it owns set-logic/set-option state and
// the assertion frame stack, and routes each parsed command accordingly.
// This is the "external collaborator" spec.md treats as out of scope for
// the core — kept intentionally thin here.
type Context struct {
	logic         *Logic
	printSuccess  bool
	produceModels bool
	exited        bool

	ids    *IDAllocator
	frames *FrameStack

	Solver Solve // which solver check-sat invokes

	// LastVerdict is the result of the most recent check-sat command.
	LastVerdict Verdict
}

// NewContext returns a context with a fresh frame stack and id allocator,
// defaulting to the CDCL solver.
func NewContext() *Context {
	return &Context{
		ids:    NewIDAllocator(),
		frames: NewFrameStack(),
		Solver: CDCLSolve,
	}
}

func (c *Context) noLogic() bool { return c.logic == nil }

// Exited reports whether an (exit) command has been processed.
func (c *Context) Exited() bool { return c.exited }

// ProcessCommands runs each command in order, stopping at the first error or
// at (exit).
func (c *Context) ProcessCommands(cmds []Command) error {
	for _, cmd := range cmds {
		if c.exited {
			break
		}
		if err := c.ProcessCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

// ProcessCommand dispatches a single command.
func (c *Context) ProcessCommand(cmd Command) error {
	if c.exited {
		return nil
	}
	switch cmd.Kind {
	case CmdSetLogic:
		if !c.noLogic() {
			return ErrDoubleLogic
		}
		logic, err := parseLogic(cmd.Symbol)
		if err != nil {
			return err
		}
		c.logic = &logic
		return nil

	case CmdSetOption:
		return c.setOption(cmd.Symbol, cmd.BoolValue)

	case CmdDeclareFun:
		if c.noLogic() {
			return ErrNoLogic
		}
		if _, ok := c.frames.Top().Symbols.GetID(cmd.Symbol); ok {
			return ErrDuplicateSymbol
		}
		id, err := c.ids.Next()
		if err != nil {
			return err
		}
		return c.frames.Top().Symbols.SetID(cmd.Symbol, id)

	case CmdAssert:
		if c.noLogic() {
			return ErrNoLogic
		}
		comp := NewCompiler(c.ids, c.frames, c.frames.Top().Clauses)
		term, err := c.toTerm(cmd.Term)
		if err != nil {
			return err
		}
		if *c.logic == LogicQFLIA {
			return nil
		}
		return comp.Assert(term)

	case CmdPush:
		if c.noLogic() {
			return ErrNoLogic
		}
		c.frames.Push(cmd.Numeral)
		return nil

	case CmdPop:
		if c.noLogic() {
			return ErrNoLogic
		}
		return c.frames.Pop(cmd.Numeral)

	case CmdCheckSat:
		if c.noLogic() {
			return ErrNoLogic
		}
		c.LastVerdict = c.Solver(c.frames.Flatten())
		return nil

	case CmdExit:
		c.exited = true
		return nil

	default:
		// Every other SMT-LIB command (get-value, declare-sort, ...) is
		// advisory/no-op at this scope, matching spec.md §6's reduced
		// command subset.
		return nil
	}
}

func (c *Context) setOption(keyword string, value bool) error {
	switch keyword {
	case "print-success":
		c.printSuccess = value
	case "produce-models":
		c.produceModels = value
	}
	return nil
}

// Model returns the user-visible model from the last check-sat, or nil if
// the last verdict was unsat or no check-sat has run yet.
func (c *Context) Model() map[string]bool {
	if !c.LastVerdict.Sat {
		return nil
	}
	return c.LastVerdict.Model(c.frames)
}

// toTerm converts a parsed Command term (a SExpr-derived AST) into a
// Compiler Term. Atoms become Var terms by name; the Compiler resolves them
// through the visible frame stack, declaring a fresh id in the top frame for
// a name no frame knows.
func (c *Context) toTerm(s SExpr) (Term, error) {
	if s.IsAtom {
		return Var(s.Atom), nil
	}
	if len(s.List) == 0 {
		return Term{}, errors.Wrap(ErrParse, "empty term")
	}
	head := s.List[0]
	if !head.IsAtom {
		return Term{}, errors.Wrap(ErrParse, "term head must be a symbol")
	}
	args := s.List[1:]
	switch head.Atom {
	case "not":
		if len(args) != 1 {
			return Term{}, errors.Wrap(ErrArity, "not")
		}
		a, err := c.toTerm(args[0])
		if err != nil {
			return Term{}, err
		}
		return Not(a), nil
	case "=>":
		return c.binary(args, Implies, "=>")
	case "=":
		return c.binary(args, Eq, "=")
	case "xor":
		return c.curried(args, Xor, "xor")
	case "and":
		return c.curried(args, And, "and")
	case "or":
		return c.curried(args, Or, "or")
	default:
		return Term{}, errors.Wrapf(ErrUnsupportedConnective, "%q", head.Atom)
	}
}

func (c *Context) binary(args []SExpr, build func(a, b Term) Term, name string) (Term, error) {
	if len(args) != 2 {
		return Term{}, errors.Wrap(ErrArity, name)
	}
	a, err := c.toTerm(args[0])
	if err != nil {
		return Term{}, err
	}
	b, err := c.toTerm(args[1])
	if err != nil {
		return Term{}, err
	}
	return build(a, b), nil
}

// curried folds an n-ary and/or/xor application into binary applications,
// left to right, since the compiler only handles binary and/or/xor.
func (c *Context) curried(args []SExpr, build func(a, b Term) Term, name string) (Term, error) {
	if len(args) < 2 {
		return Term{}, errors.Wrap(ErrArity, name)
	}
	acc, err := c.toTerm(args[0])
	if err != nil {
		return Term{}, err
	}
	for _, rest := range args[1:] {
		t, err := c.toTerm(rest)
		if err != nil {
			return Term{}, err
		}
		acc = build(acc, t)
	}
	return acc, nil
}

// CommandKind enumerates the script commands this dispatcher supports.
type CommandKind int

const (
	CmdSetLogic CommandKind = iota
	CmdSetOption
	CmdDeclareFun
	CmdAssert
	CmdPush
	CmdPop
	CmdCheckSat
	CmdExit
	CmdOther
)

// Command is one parsed top-level script form.
type Command struct {
	Kind      CommandKind
	Symbol    string
	BoolValue bool
	Term      SExpr
	Numeral   int
}

// ParseScript reads a full script (a sequence of top-level s-expressions)
// and translates each into a Command.
func ParseScript(r io.Reader) ([]Command, error) {
	exprs, err := parseSExprs(r)
	if err != nil {
		return nil, err
	}
	cmds := make([]Command, 0, len(exprs))
	for _, s := range exprs {
		cmd, err := toCommand(s)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func toCommand(s SExpr) (Command, error) {
	if s.IsAtom || len(s.List) == 0 {
		return Command{}, errors.Wrap(ErrParse, "expected a command form")
	}
	head := s.List[0]
	if !head.IsAtom {
		return Command{}, errors.Wrap(ErrParse, "command head must be a symbol")
	}
	args := s.List[1:]
	switch head.Atom {
	case "set-logic":
		if len(args) != 1 || !args[0].IsAtom {
			return Command{}, errors.Wrap(ErrParse, "set-logic")
		}
		return Command{Kind: CmdSetLogic, Symbol: args[0].Atom}, nil

	case "set-option":
		if len(args) != 2 || !args[0].IsAtom || !args[1].IsAtom {
			return Command{}, errors.Wrap(ErrParse, "set-option")
		}
		keyword := strings.TrimPrefix(args[0].Atom, ":")
		value, err := strconv.ParseBool(args[1].Atom)
		if err != nil {
			return Command{}, errors.Wrap(ErrParse, "set-option value")
		}
		return Command{Kind: CmdSetOption, Symbol: keyword, BoolValue: value}, nil

	case "declare-fun":
		if len(args) != 3 || !args[0].IsAtom || args[1].IsAtom || len(args[1].List) != 0 {
			return Command{}, errors.Wrap(ErrParse, "declare-fun: expected (declare-fun name () Bool)")
		}
		if !args[2].IsAtom || args[2].Atom != "Bool" {
			return Command{}, errors.Wrap(ErrParse, "declare-fun: only nullary Bool functions are supported")
		}
		return Command{Kind: CmdDeclareFun, Symbol: args[0].Atom}, nil

	case "assert":
		if len(args) != 1 {
			return Command{}, errors.Wrap(ErrParse, "assert")
		}
		return Command{Kind: CmdAssert, Term: args[0]}, nil

	case "push":
		n, err := numeralArg(args)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdPush, Numeral: n}, nil

	case "pop":
		n, err := numeralArg(args)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdPop, Numeral: n}, nil

	case "check-sat":
		return Command{Kind: CmdCheckSat}, nil

	case "exit":
		return Command{Kind: CmdExit}, nil

	default:
		return Command{Kind: CmdOther}, nil
	}
}

func numeralArg(args []SExpr) (int, error) {
	if len(args) != 1 || !args[0].IsAtom {
		return 0, errors.Wrap(ErrParse, "expected a single numeral argument")
	}
	n, err := strconv.Atoi(args[0].Atom)
	if err != nil || n < 0 {
		return 0, errors.Wrap(ErrParse, "invalid numeral")
	}
	return n, nil
}

// SExpr is a minimal s-expression: either an atom or a list of SExprs.
type SExpr struct {
	IsAtom bool
	Atom   string
	List   []SExpr
}

// parseSExprs tokenizes r as a sequence of parenthesized s-expressions,
// generalizing cespare/saturday's ParseDIMACS (a bufio.Scanner reader that
// returns structured data and an error) from DIMACS's flat line format to
// this language's recursive, parenthesized one.
func parseSExprs(r io.Reader) ([]SExpr, error) {
	toks, err := tokenize(r)
	if err != nil {
		return nil, err
	}
	var out []SExpr
	i := 0
	for i < len(toks) {
		s, next, err := parseOne(toks, i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		i = next
	}
	return out, nil
}

func parseOne(toks []string, i int) (SExpr, int, error) {
	if i >= len(toks) {
		return SExpr{}, i, errors.Wrap(ErrParse, "unexpected end of input")
	}
	if toks[i] == "(" {
		i++
		var list []SExpr
		for i < len(toks) && toks[i] != ")" {
			s, next, err := parseOne(toks, i)
			if err != nil {
				return SExpr{}, i, err
			}
			list = append(list, s)
			i = next
		}
		if i >= len(toks) {
			return SExpr{}, i, errors.Wrap(ErrParse, "unterminated list")
		}
		return SExpr{List: list}, i + 1, nil
	}
	if toks[i] == ")" {
		return SExpr{}, i, errors.Wrap(ErrParse, "unexpected )")
	}
	return SExpr{IsAtom: true, Atom: toks[i]}, i + 1, nil
}

func tokenize(r io.Reader) ([]string, error) {
	var toks []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = line[:idx]
		}
		var cur strings.Builder
		flush := func() {
			if cur.Len() > 0 {
				toks = append(toks, cur.String())
				cur.Reset()
			}
		}
		for _, r := range line {
			switch {
			case r == '(' || r == ')':
				flush()
				toks = append(toks, string(r))
			case r == ' ' || r == '\t' || r == '\r':
				flush()
			default:
				cur.WriteRune(r)
			}
		}
		flush()
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading script")
	}
	return toks, nil
}

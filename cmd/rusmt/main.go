// Command rusmt reads an SMT-LIB-subset script and reports sat/unsat for
// its assertions, using either the CDCL engine or a brute-force reference
// solver.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/kaminarios/rusmt-go"
)

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `rusmt: a toy SMT-subset (QF_UF/QF_LIA) SAT solver.

Usage:

  rusmt <BRUTE|CDCL> [script.smt2]

rusmt reads a script in the §6 SMT-LIB command subset: set-logic,
set-option, declare-fun, assert, push, pop, check-sat, exit.

If no script path is given, rusmt reads from standard input.

RUSMT_LOG controls log verbosity (panic|fatal|error|warn|info|debug|trace).
At trace level the CDCL engine dumps its assignment trail on every decision.
`)
	}
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if level := os.Getenv("RUSMT_LOG"); level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			log.Fatalf("invalid RUSMT_LOG value %q: %v", level, err)
		}
		logger.SetLevel(parsed)
	}
	rusmt.DefaultLog = logger

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	solverName := flag.Arg(0)

	var r io.Reader = os.Stdin
	if flag.NArg() >= 2 {
		f, err := os.Open(flag.Arg(1))
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		r = f
	}

	cmds, err := rusmt.ParseScript(r)
	if err != nil {
		log.Fatalln("Error reading script:", err)
	}

	ctx := rusmt.NewContext()
	switch solverName {
	case "CDCL":
		ctx.Solver = rusmt.CDCLSolve
	case "BRUTE":
		ctx.Solver = rusmt.BruteSolve
	default:
		log.Fatalf("unknown solver %q: expected BRUTE or CDCL", solverName)
	}
	fmt.Printf("Using solver: %s\n", solverName)

	if err := ctx.ProcessCommands(cmds); err != nil {
		log.Fatalln("Error running script:", err)
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		model := ctx.Model()
		keys := make([]string, 0, len(model))
		for k := range model {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			logger.Debugf("%s = %v", k, model[k])
		}
	}

	if ctx.LastVerdict.Sat {
		fmt.Println("res: sat")
		return
	}
	fmt.Println("res: unsat")
}

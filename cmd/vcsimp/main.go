package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/movelight/vcsimp"
)

var (
	flagSpecMode bool
	flagVerbose  bool
	flagDump     bool
	flagAssumes  []string
	flagVars     []string
)

var rootCmd = &cobra.Command{
	Use:   "vcsimp [file]",
	Short: "Simplify verification-condition expressions",
	Long: `Reads verification-condition expressions in s-expression form from a
file or standard input, simplifies each one under the given assumptions, and
prints the result. Struct and spec-function declarations may precede the
expressions in the input.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().BoolVar(&flagSpecMode, "spec-mode", false, "enable unchecked-arithmetic rewrite rules")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log fired rewrite rules")
	rootCmd.Flags().BoolVar(&flagDump, "dump", false, "dump the simplified tree structure to stderr")
	rootCmd.Flags().StringArrayVar(&flagAssumes, "assume", nil, "predicate to assume true (repeatable)")
	rootCmd.Flags().StringArrayVar(&flagVars, "var", nil, "free variable declaration name:type (repeatable)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		log.SetLevel(log.DebugLevel)
	}

	var src io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	env := vcsimp.NewEnv()
	parser := newParser(env)
	for _, v := range flagVars {
		if err := parser.declareVar(v); err != nil {
			return err
		}
	}

	exps, err := parser.parseAll(string(data))
	if err != nil {
		return err
	}

	s := vcsimp.NewSimplifierWithMode(env, flagSpecMode)
	for _, a := range flagAssumes {
		exp, err := parser.parseString(a)
		if err != nil {
			return fmt.Errorf("parsing assumption %q: %w", a, err)
		}
		s.Assume(s.Simplify(exp))
	}

	for _, exp := range exps {
		out := s.Simplify(exp)
		if flagDump {
			spew.Fdump(os.Stderr, out)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/steiner-battery/fstscope/fst/entity"
	"github.com/steiner-battery/fstscope/fst/topology"
)

// noneArg marks a non-existent previous iteration.
const noneArg = "NONE"

// ErrMalformedArgs is returned for a wrong argument count or flag value.
var ErrMalformedArgs = errors.New("malformed arguments")

var (
	topoMethod       string // Output method: detailed, fst, l1, l2
	topoStarFallback bool   // Synthesize star edges for dumps without an edge block
	topoVerbose      bool   // Print edge changes to stderr
)

var topoDistanceCmd = &cobra.Command{
	Use:   "topo-distance <dump_prev> <dump_curr> <sol_prev> <sol_curr> <terminals>",
	Short: "Print the change in selected topology between two iterations",
	Long: `Prints one line "<changed_edges> (<changed_length>)" to stdout.
Pass NONE as dump_prev or sol_prev for the first iteration. On any error the
line "0 (0.000)" is still printed and the exit status is 1.`,
	SilenceUsage: true,
	// The root pre-run would exit without printing the zero line.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := setup(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), topology.Distance{})
			logrus.Fatalf("%v", err)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTopoDistance(args, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
			logrus.Errorf("topo-distance: %v", err)
			os.Exit(1)
		}
	},
}

// iterationTopology is the active topology of one dump/solution pair.
type iterationTopology struct {
	edges fst.EdgeSet
	sel   fst.Selection
}

func loadTopology(dumpPath, solPath string, star bool) (iterationTopology, error) {
	f, err := os.Open(solPath)
	if err != nil {
		return iterationTopology{}, fmt.Errorf("opening solution: %w", err)
	}
	defer f.Close()
	log, err := entity.ParseSolution(f)
	if err != nil {
		return iterationTopology{}, fmt.Errorf("%s: %w", solPath, err)
	}

	layout := topology.Layout{StarFallback: star}
	if n := len(log.Costs); n > 0 {
		layout.FSTCount = fst.Some(n)
	}
	dump, err := topology.ParseDumpFile(dumpPath, layout)
	if err != nil {
		return iterationTopology{}, err
	}
	if len(dump.FSTs) == 0 {
		return iterationTopology{}, fmt.Errorf("%s: no FST definitions", dumpPath)
	}

	sel := fst.SelectionFromLP(log.Assignments)
	if sel.Len() == 0 {
		logrus.Warnf("%s: no FST selected", solPath)
	}
	return iterationTopology{edges: topology.Active(dump.Edges, dump.FSTs, sel), sel: sel}, nil
}

func loadPositions(path string) (fst.Positions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening terminals: %w", err)
	}
	defer f.Close()
	tf, err := entity.ParseTerminals(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	pos := make(fst.Positions, len(tf.Coordinates))
	for i, p := range tf.Coordinates {
		pos[i] = p
	}
	return pos, nil
}

// runTopoDistance writes exactly one line to stdout, the zero distance on error.
func runTopoDistance(args []string, stdout, stderr io.Writer) (err error) {
	defer func() {
		if err != nil {
			fmt.Fprintln(stdout, topology.Distance{})
		}
	}()

	if len(args) != 5 {
		return fmt.Errorf("%w: want 5 positional arguments, got %d", ErrMalformedArgs, len(args))
	}
	method, err := topology.ParseMethod(topoMethod)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedArgs, err)
	}
	dumpPrev, dumpCurr, solPrev, solCurr, terminals := args[0], args[1], args[2], args[3], args[4]
	if dumpCurr == noneArg || solCurr == noneArg {
		return fmt.Errorf("%w: the current iteration cannot be %s", ErrMalformedArgs, noneArg)
	}

	if dumpPrev == noneArg || solPrev == noneArg {
		if topoVerbose {
			fmt.Fprintln(stderr, "First iteration - no previous solution to compare")
		}
		fmt.Fprintln(stdout, method.Format(topology.Comparison{}))
		return nil
	}

	star := topoStarFallback || analysisConfig.UseStarFallback()
	pos, err := loadPositions(terminals)
	if err != nil {
		return err
	}
	prev, err := loadTopology(dumpPrev, solPrev, star)
	if err != nil {
		return err
	}
	curr, err := loadTopology(dumpCurr, solCurr, star)
	if err != nil {
		return err
	}

	cmp := topology.Compare(fst.Some(prev.edges), curr.edges, fst.Some(prev.sel), curr.sel, pos)
	if topoVerbose {
		fmt.Fprintf(stderr, "Edges changed: %d\n", cmp.EdgeCount)
		fmt.Fprintf(stderr, "Total edge length: %.3f\n", cmp.Length)
		fmt.Fprintf(stderr, "FSTs changed: %d\n", cmp.FSTChanged)
		for _, e := range cmp.Change.Added {
			fmt.Fprintf(stderr, "  + %s\n", e)
		}
		for _, e := range cmp.Change.Removed {
			fmt.Fprintf(stderr, "  - %s\n", e)
		}
	}
	fmt.Fprintln(stdout, method.Format(cmp))
	return nil
}

// zeroOnFlagError keeps the one-line output contract when flag parsing
// fails, which happens before any run hook.
func zeroOnFlagError(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.OutOrStdout(), topology.Distance{})
	return fmt.Errorf("%w: %v", ErrMalformedArgs, err)
}

func init() {
	topoDistanceCmd.SetFlagErrorFunc(zeroOnFlagError)
	topoDistanceCmd.Flags().StringVarP(&topoMethod, "method", "m", string(topology.MethodDetailed), "Distance method (detailed, fst, l1, l2)")
	topoDistanceCmd.Flags().BoolVar(&topoStarFallback, "star-fallback", false, "Synthesize star edges when a dump has no edge block")
	topoDistanceCmd.Flags().BoolVarP(&topoVerbose, "verbose", "v", false, "Print edge changes to stderr")

	rootCmd.AddCommand(topoDistanceCmd)
}

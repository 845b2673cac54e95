package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/joescharf/yr/internal/history"
	"github.com/joescharf/yr/internal/models"
	"github.com/joescharf/yr/internal/output"
	"github.com/joescharf/yr/internal/reviewer"
)

var (
	reviewJSON     bool
	reviewNoRecord bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <year>...",
	Short: "Review one or more years",
	Long: fmt.Sprintf(`Review one or more calendar years.

Each year must be an integer no later than %d. Years that cannot be reviewed
are reported individually and make the command exit non-zero.

Negative years can be given directly; they are never read as flags.`, reviewer.Present),
	Example: `  yr review 1984
  yr review 0 42 1337 --json
  yr review -44 -- -753`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewRun(args)
	},
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "Output reviews as JSON")
	reviewCmd.Flags().BoolVar(&reviewNoRecord, "no-record", false, "Do not add the reviews to the history")
	rootCmd.AddCommand(reviewCmd)
}

// yearArgs rewrites command-line arguments so negative years reach
// `yr review` as positional arguments. pflag reads "-10" as the shorthand
// flag "-1", so the positional arguments of a review are moved, in order,
// behind a "--" terminator. Any other command line is returned unchanged.
func yearArgs(args []string) []string {
	i := commandIndex(args)
	if i < 0 || args[i] != reviewCmd.Name() {
		return args
	}
	rest := args[i+1:]
	end := slices.Index(rest, "--")
	if end < 0 {
		end = len(rest)
	}
	if !slices.ContainsFunc(rest[:end], isNumericArg) {
		return args
	}

	out := slices.Clone(args[:i+1])
	var years []string
	for j := 0; j < len(rest); j++ {
		arg := rest[j]
		switch {
		case arg == "--":
			years = append(years, rest[j+1:]...)
			j = len(rest)
		case isNumericArg(arg) || !strings.HasPrefix(arg, "-"):
			years = append(years, arg)
		default:
			out = append(out, arg)
			if takesValue(arg) && j+1 < len(rest) {
				j++
				out = append(out, rest[j])
			}
		}
	}
	out = append(out, "--")
	return append(out, years...)
}

// commandIndex returns the index of the first argument naming a subcommand,
// skipping root flags and their values.
func commandIndex(args []string) int {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return -1
		}
		if !strings.HasPrefix(arg, "-") {
			return i
		}
		if takesValue(arg) {
			i++
		}
	}
	return -1
}

// isNumericArg reports whether arg is a number with a leading minus sign.
func isNumericArg(arg string) bool {
	return len(arg) > 1 && arg[0] == '-' && arg[1] >= '0' && arg[1] <= '9'
}

// takesValue reports whether arg is a flag whose value is the next argument.
func takesValue(arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	var f *pflag.Flag
	switch {
	case strings.HasPrefix(arg, "--"):
		name := arg[2:]
		if f = reviewCmd.Flags().Lookup(name); f == nil {
			f = rootCmd.PersistentFlags().Lookup(name)
		}
	case len(arg) == 2:
		if f = reviewCmd.Flags().ShorthandLookup(arg[1:]); f == nil {
			f = rootCmd.PersistentFlags().ShorthandLookup(arg[1:])
		}
	}
	return f != nil && f.NoOptDefVal == ""
}

// reviewLine is one entry of `yr review --json`.
type reviewLine struct {
	Input   string `json:"input"`
	Year    *int64 `json:"year,omitempty"`
	Review  string `json:"review,omitempty"`
	Special bool   `json:"special,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

func reviewRun(args []string) error {
	rec, err := newRecorder(!reviewNoRecord && !dryRun)
	if err != nil {
		return err
	}
	ctx := context.Background()

	lines := make([]reviewLine, 0, len(args))
	failed := 0
	for _, arg := range args {
		line := reviewLine{Input: arg}

		r, err := reviewArg(ctx, rec, arg)
		if err != nil {
			failed++
			line.Error = err.Error()
			line.Kind = reviewer.KindOf(err).String()
			lines = append(lines, line)
			if !reviewJSON {
				ui.Error("%s: %v (%s)", arg, err, output.KindColor(reviewer.KindOf(err)))
			}
			continue
		}

		line.Year = &r.Year
		line.Review = r.Result
		line.Special = r.Special
		lines = append(lines, line)

		if reviewJSON {
			continue
		}
		if len(args) == 1 {
			fmt.Fprintln(ui.Out, output.ResultColor(r.Result, r.Special))
		} else {
			fmt.Fprintf(ui.Out, "%6d  %s\n", r.Year, output.ResultColor(r.Result, r.Special))
		}
		if r.Special {
			ui.VerboseLog("%d has a fixed review", r.Year)
		}
	}

	if reviewJSON {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(lines); err != nil {
			return err
		}
	}

	if ok := len(args) - failed; ok > 0 && dryRun && !reviewNoRecord {
		ui.DryRunMsg("Would record %d review(s) in the history", ok)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d year(s) could not be reviewed", failed, len(args))
	}
	return nil
}

// reviewArg parses a command-line year and reviews it.
func reviewArg(ctx context.Context, rec *history.Recorder, arg string) (*models.Review, error) {
	year, err := reviewer.ParseYear(arg)
	if err != nil {
		return nil, err
	}
	return rec.Review(ctx, year, models.ReviewSourceCLI)
}

package cmds

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-bic/bic/pkg/bic"
	"github.com/go-bic/bic/pkg/config"
	"github.com/go-bic/bic/pkg/logflags"
	"github.com/go-bic/bic/pkg/version"
	"github.com/spf13/cobra"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// blacklist is the list of class name patterns to exclude, in addition
	// to the configured ones.
	blacklist []string
	// noDefaultBlacklist disables the built-in exclusion set.
	noDefaultBlacklist bool
	// ptrSize is the pointer width (in bytes) used to canonicalize raw
	// address tokens; 0 means the host's width.
	ptrSize int
	// patchRelease is whether additions count as violations too.
	patchRelease bool

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf *config.Config
)

const bicCommandLongDesc = `bic checks the binary compatibility of two versions of a C++ library.

It reads class-hierarchy dumps as produced by gcc -fdump-class-hierarchy,
extracts per-class object sizes and vtable layouts, and compares an old
(baseline) dump against a new one. Removed classes, changed object sizes and
modified vtable slots break binary compatibility; additions and
reimplemented virtuals are only reported as violations for patch releases.`

// New returns an initialized command tree.
func New() *cobra.Command {
	// Config setup and load.
	conf = config.LoadConfig()

	// Main bic root command.
	rootCommand = &cobra.Command{
		Use:   "bic",
		Short: "bic is a binary compatibility checker for C++ libraries.",
		Long:  bicCommandLongDesc,
	}

	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable debug logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output (parser,diff,check).`)
	rootCommand.PersistentFlags().StringSliceVar(&blacklist, "blacklist", nil, "Class name patterns (wildcard or regex) to exclude, in addition to the configured ones.")
	rootCommand.PersistentFlags().BoolVar(&noDefaultBlacklist, "no-default-blacklist", false, "Do not install the built-in exclusion set.")
	rootCommand.PersistentFlags().IntVar(&ptrSize, "ptr-size", 0, "Pointer width in bytes (4 or 8) for address canonicalization; 0 uses the host's width.")

	// 'parse' subcommand.
	parseCommand := &cobra.Command{
		Use:   "parse <dump file>",
		Short: "Parse a class-hierarchy dump and print the snapshot.",
		Long: `Parse a class-hierarchy dump and print the snapshot.

Prints every class surviving the blacklist along with its object size and
normalized vtable. Useful to inspect what the diff and check commands
operate on.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("you must provide a dump file")
			}
			return nil
		},
		Run: parseCmd,
	}
	rootCommand.AddCommand(parseCommand)

	// 'diff' subcommand.
	diffCommand := &cobra.Command{
		Use:   "diff <old dump> <new dump>",
		Short: "Compare two dumps and print every difference.",
		Long: `Compare two class-hierarchy dumps and print every difference.

Unlike check, diff does not apply the compatibility policy: it prints
additions, removals, modifications and reimplementations alike and always
exits with status 0.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("you must provide an old and a new dump file")
			}
			return nil
		},
		Run: diffCmd,
	}
	rootCommand.AddCommand(diffCommand)

	// 'check' subcommand.
	checkCommand := &cobra.Command{
		Use:   "check <old dump> <new dump>",
		Short: "Check binary compatibility of a new dump against a baseline.",
		Long: `Check binary compatibility of a new dump against a baseline.

Exits with status 1 if the new version breaks binary compatibility with the
old one. With --patch-release, classes and reimplemented virtuals added
since the baseline are violations too.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("you must provide an old and a new dump file")
			}
			return nil
		},
		Run: checkCmd,
	}
	checkCommand.Flags().BoolVar(&patchRelease, "patch-release", false, "Also fail on additions and reimplemented virtuals.")
	rootCommand.AddCommand(checkCommand)

	// 'version' subcommand.
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bic %s\n%s\n", version.BicVersion, version.BuildInfo())
		},
	}
	rootCommand.AddCommand(versionCommand)

	return rootCommand
}

// buildParser assembles the parser from the config file and the command
// line. Command line patterns extend the configured ones.
func buildParser() *bic.Parser {
	var bl bic.Blacklist
	if !noDefaultBlacklist && !conf.NoDefaultBlacklist {
		bl = bic.DefaultBlacklist()
	}
	bl = bl.With(conf.Blacklist...)
	bl = bl.With(blacklist...)

	size := ptrSize
	if size == 0 {
		size = conf.PtrSize
	}
	return bic.NewParser(bl, size)
}

func newSnapshotCache() *bic.SnapshotCache {
	size := conf.CacheSize
	if size <= 0 {
		size = 16
	}
	cache, err := bic.NewSnapshotCache(buildParser(), size)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cache
}

func setupLogging() {
	if err := logflags.Setup(log, logOutput); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseCmd(cmd *cobra.Command, args []string) {
	setupLogging()
	info := buildParser().ParseFile(args[0])
	if len(info.ClassSizes) == 0 && len(info.ClassVTables) == 0 {
		fmt.Fprintf(os.Stderr, "%s contains no class information\n", args[0])
		os.Exit(1)
	}

	names := make([]string, 0, len(info.ClassSizes))
	for name := range info.ClassSizes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("Class %s: size=%d\n", name, info.ClassSizes[name])
	}

	names = names[:0]
	for name := range info.ClassVTables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("Vtable for %s:\n", name)
		for _, entry := range info.ClassVTables[name] {
			fmt.Printf("    %s\n", entry)
		}
	}
}

func diffCmd(cmd *cobra.Command, args []string) {
	setupLogging()
	cache := newSnapshotCache()
	oldLib := cache.Load(args[0])
	newLib := cache.Load(args[1])

	bic.WriteVTableReport(os.Stdout, bic.DiffVTables(oldLib, newLib), oldLib, newLib)
	bic.WriteSizeReport(os.Stdout, bic.DiffSizes(oldLib, newLib), oldLib, newLib)
}

func checkCmd(cmd *cobra.Command, args []string) {
	setupLogging()
	cache := newSnapshotCache()
	oldLib := cache.Load(args[0])
	newLib := cache.Load(args[1])

	// An empty snapshot means the dump could not be read or contained
	// nothing; comparing against it would report everything as removed or
	// added, so treat it as a failure of its own.
	if len(oldLib.ClassVTables) == 0 {
		fmt.Fprintf(os.Stderr, "%s contains no class information\n", args[0])
		os.Exit(1)
	}
	if len(newLib.ClassVTables) == 0 {
		fmt.Fprintf(os.Stderr, "%s contains no class information\n", args[1])
		os.Exit(1)
	}

	problems := bic.Check(
		bic.DiffVTables(oldLib, newLib),
		bic.DiffSizes(oldLib, newLib),
		patchRelease || conf.PatchRelease)

	for _, problem := range problems {
		fmt.Fprintln(os.Stderr, problem)
	}
	if len(problems) > 0 {
		fmt.Fprintf(os.Stderr, "%s is not binary compatible with %s\n", args[1], args[0])
		os.Exit(1)
	}
	fmt.Printf("%s is binary compatible with %s\n", args[1], args[0])
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/declutter/pkg/audit"
	"github.com/macropower/declutter/pkg/config"
	"github.com/macropower/declutter/pkg/log"
	"github.com/macropower/declutter/pkg/report"
	"github.com/macropower/declutter/pkg/scan"
	"github.com/macropower/declutter/pkg/watch"
	"github.com/macropower/declutter/pkg/yaml"
)

const (
	cmdExamples = `  # Audit the directories listed in ./declutter.yaml:
  declutter

  # Use another configuration file:
  declutter ~/.config/declutter.yaml

  # Write a starter configuration:
  declutter --write-config

  # Print the rule sets as they will be applied:
  declutter --show-config

  # Keep auditing as the directories change:
  declutter --watch

  # Machine-readable output:
  declutter --format json`
)

var errUsage = errors.New("invalid usage")

type RunArgs struct {
	*RootArgs

	ConfigPath     string
	Format         string
	Jobs           int
	MaxDepth       int
	FollowSymlinks bool
	Quiet          bool
	Sizes          bool
	Strict         bool
	Watch          bool
	WriteConfig    bool
	Force          bool
	ShowConfig     bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{
		RootArgs: rootArgs,
	}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&ra.ConfigPath, "config", "c", config.DefaultFileName, "Path to the declutter configuration file")
	cmd.Flags().StringVarP(&ra.Format, "format", "o", string(report.FormatText),
		fmt.Sprintf("Output format, one of: %s", report.AllFormats))
	cmd.Flags().IntVarP(&ra.Jobs, "jobs", "j", runtime.NumCPU(), "Number of directories audited concurrently")
	cmd.Flags().IntVar(&ra.MaxDepth, "max-depth", 0, "Maximum depth to descend into recursive directories (0 is unlimited)")
	cmd.Flags().BoolVarP(&ra.FollowSymlinks, "follow-symlinks", "L", false, "Descend into symbolic links to directories")
	cmd.Flags().BoolVarP(&ra.Quiet, "quiet", "q", false, "Only print violations and errors")
	cmd.Flags().BoolVar(&ra.Sizes, "sizes", false, "Print the size of each violation")
	cmd.Flags().BoolVar(&ra.Strict, "strict", false, "Validate the configuration against the JSON schema")
	cmd.Flags().BoolVarP(&ra.Watch, "watch", "w", false, "Watch for changes and audit again")
	cmd.Flags().BoolVar(&ra.WriteConfig, "write-config", false, "Write the starter configuration file and exit")
	cmd.Flags().BoolVar(&ra.Force, "force", false, "With --write-config, back up and replace an existing file")
	cmd.Flags().BoolVar(&ra.ShowConfig, "show-config", false, "Print the normalized rule sets and exit")

	err := cmd.MarkFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark config flag: %w", err))
	}

	err = cmd.RegisterFlagCompletionFunc("format",
		cobra.FixedCompletions(report.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewRunCmd(ra *RunArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "run [config]",
		Short:             "Default command, can be used explicitly if the config path is ambiguous",
		Example:           cmdExamples,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: runCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				ra.ConfigPath = args[0]
			}

			return run(cmd, ra)
		},
	}
	ra.AddFlags(cmd)

	ra.envErr = bindEnvVars(cmd)

	return cmd
}

func runCompletion(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return []cobra.Completion{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	}

	return nil, cobra.ShellCompDirectiveNoFileComp
}

func run(cmd *cobra.Command, ra *RunArgs) error {
	ctx := cmd.Context()

	if ra.WriteConfig {
		err := config.WriteDefaultConfig(ra.ConfigPath, ra.Force)
		if err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		return nil
	}

	format, err := report.GetFormat(ra.Format)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	doc, err := loadDocument(ra)
	if err != nil {
		return err
	}

	if ra.ShowConfig {
		return showConfig(cmd.OutOrStdout(), doc)
	}

	printer, err := report.New(cmd.OutOrStdout(), format,
		report.WithQuiet(ra.Quiet),
		report.WithSizes(ra.Sizes),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	a := audit.New(
		audit.WithJobs(ra.Jobs),
		audit.WithScanOptions(
			scan.WithFollowSymlinks(ra.FollowSymlinks),
			scan.WithMaxDepth(ra.MaxDepth),
		),
	)

	summary, err := auditOnce(ctx, a, doc, printer)
	if err != nil {
		return err
	}

	if !ra.Watch {
		return summaryError(summary)
	}

	return watchLoop(ctx, ra, a, printer, doc.Path, summary)
}

// loadDocument reads the configuration and, in strict mode, validates it.
func loadDocument(ra *RunArgs) (*config.Document, error) {
	doc, err := config.Load(ra.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error when reading config %s: %w", ra.ConfigPath, err)
	}

	if ra.Strict {
		err = doc.Validate(config.DefaultValidator)
		if err != nil {
			return nil, fmt.Errorf("invalid config %q: %w", ra.ConfigPath, err)
		}
	}

	return doc, nil
}

func auditOnce(ctx context.Context, a *audit.Auditor, doc *config.Document, p report.Printer) (*audit.Summary, error) {
	err := p.Start()
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped by the printer.
	}

	var printErr error

	summary := a.Run(ctx, doc, func(r *audit.Result) {
		if printErr == nil {
			printErr = p.Result(r)
		}
	})
	if printErr != nil {
		return nil, printErr
	}

	err = p.Finish(summary)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped by the printer.
	}

	log.WithContext(ctx).DebugContext(ctx, "audit finished",
		slog.String("status", summary.Status().String()),
		slog.Int("violations", summary.Violations),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// summaryError converts a summary into the error returned by the command.
func summaryError(s *audit.Summary) error {
	switch s.Status() {
	case audit.StatusFailed:
		return fmt.Errorf("%w: %w", ErrAuditFailed, s.Err())
	case audit.StatusClutterFound:
		return fmt.Errorf("%w: %d violations", ErrClutterFound, s.Violations)
	case audit.StatusClean:
	}

	return nil
}

func watchLoop(
	ctx context.Context,
	ra *RunArgs,
	a *audit.Auditor,
	p report.Printer,
	configPath string,
	summary *audit.Summary,
) error {
	w, err := watch.New()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	defer func() {
		err := w.Close()
		if err != nil {
			slog.Error("close watcher", slog.Any("err", err))
		}
	}()

	addWatches(ctx, w, configPath, summary)

	return w.Run(ctx, func(ctx context.Context) error { //nolint:wrapcheck // Errors come from the printer.
		w.Reset(ctx)

		doc, err := loadDocument(ra)
		if err != nil {
			// Keep the previous document and wait for the config to be fixed.
			log.WithContext(ctx).ErrorContext(ctx, "reload config", slog.Any("err", err))
			addWatches(ctx, w, configPath, summary)

			return nil
		}

		summary, err = auditOnce(ctx, a, doc, p)
		if err != nil {
			return err
		}

		addWatches(ctx, w, configPath, summary)

		return nil
	})
}

// addWatches watches the configuration file and every resolved directory.
func addWatches(ctx context.Context, w *watch.Watcher, configPath string, s *audit.Summary) {
	logger := log.WithContext(ctx)

	err := w.AddFile(configPath)
	if err != nil {
		logger.WarnContext(ctx, "watch config", slog.Any("err", err))
	}

	for _, r := range s.Results {
		if r.Resolved == "" {
			continue
		}

		err := w.AddTree(r.Resolved)
		if err != nil {
			logger.WarnContext(ctx, "watch directory",
				slog.String("path", r.Resolved),
				slog.Any("err", err),
			)
		}
	}

	logger.DebugContext(ctx, "watching for changes", slog.Int("directories", w.Len()))
}

// showConfig prints every entry's normalized rule set as YAML.
func showConfig(out io.Writer, doc *config.Document) error {
	node := make(yaml.MapSlice, 0, len(doc.Entries))

	for i, e := range doc.Entries {
		rs, err := doc.Build(i)
		if err != nil {
			return fmt.Errorf("error when parsing yaml under path %s: %w", e.Path, err)
		}

		node = append(node, yaml.MapItem{Key: e.Path, Value: config.RuleSetNode(rs)})
	}

	b, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}

	if isTerminal(out) {
		err = quick.Highlight(out, string(b), "yaml", "terminal256", "monokai")
		if err == nil {
			return nil
		}

		slog.Debug("highlight config", slog.Any("err", err))
	}

	_, err = out.Write(b)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

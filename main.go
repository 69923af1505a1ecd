package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// version is the application version, set via ldflags.
var version = "dev"

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	setDefaults(v)

	var cfgFile string

	cmd := &cobra.Command{
		Use:   "ngin [dist=<path>] [src=<path>] [-v]",
		Short: "Inline component templateUrl and styleUrls assets as minified literals.",
		Long: `ngin finds every component file under the dist directory and replaces its
templateUrl and styleUrls references with minified inline template and styles
literals. Referenced files are resolved relative to the matching directory
under the src directory. HTML, CSS, SCSS and SASS files are supported; SCSS and
SASS are compiled with Dart Sass ("sass" on PATH unless --sass-binary is set).

Arguments of the form dist=<path> and src=<path> are applied in order and
override the matching flags.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			usedFile, err := readConfigFile(v, cfgFile)
			if err != nil {
				return err
			}
			if upper, _ := cmd.Flags().GetBool("verbose-upper"); upper {
				v.Set("verbose", true)
			}

			cfg, unknown, err := loadConfig(v, args)
			if err != nil {
				return err
			}

			logger := newLogger(stderr, cfg.Verbose)
			if usedFile != "" {
				logger.Debug("using config file", "path", usedFile)
			}
			for _, arg := range unknown {
				logger.Debug("ignoring unknown argument", "arg", arg)
			}
			return run(cmd.Context(), cfg, logger, stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./.ngin.* or $HOME/.config/ngin/.ngin.*)")
	flags.String("dist", defaultDistDir, "directory to search for component files")
	flags.String("src", defaultSrcDir, "directory that asset references are resolved against")
	flags.String("pattern", defaultPattern, "glob matched against file names to select component files")
	flags.String("ignore-file", "", "gitignore-style file of paths under dist to skip")
	flags.String("sass-binary", "", "Dart Sass executable used for .scss and .sass files")
	flags.Bool("dry-run", false, "report what would be inlined without writing any file")
	flags.BoolP("verbose", "v", false, "log every directory, file and asset processed")
	flags.BoolP("verbose-upper", "V", false, "same as -v")
	_ = flags.MarkHidden("verbose-upper")

	for key, flag := range map[string]string{
		"dist":        "dist",
		"src":         "src",
		"pattern":     "pattern",
		"ignore_file": "ignore-file",
		"sass_binary": "sass-binary",
		"dry_run":     "dry-run",
		"verbose":     "verbose",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	v.SetEnvPrefix("NGIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return cmd
}

// readConfigFile loads an explicit config file, or searches the current
// directory and $HOME/.config/ngin. A missing file is not an error.
func readConfigFile(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".ngin")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ngin"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("error reading config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// run inlines assets for every component file under cfg.DistDir.
func run(ctx context.Context, cfg Config, logger *slog.Logger, stdout io.Writer) error {
	logger.Debug("starting", "dist", cfg.DistDir, "src", cfg.SrcDir, "pattern", cfg.Pattern)

	summary := &Summary{}
	compiler := newDartSass(cfg.SassBinary, []string{cfg.SrcDir}, logger)
	defer func() {
		if err := compiler.Close(); err != nil {
			logger.Warn("closing dart sass", "error", err)
		}
	}()

	inliner := NewInliner(cfg, regexExtractor{}, newAssetMinifier(compiler), summary, logger)
	walker, err := NewWalker(cfg, inliner, summary, logger)
	if err != nil {
		return err
	}
	if err := walker.Walk(ctx, cfg.DistDir); err != nil {
		return err
	}

	printSummary(stdout, summary, cfg.DryRun)
	return nil
}

// executeArgs runs cmd with args. Flags the command does not define are moved
// behind a "--" so they are ignored like any other unknown argument instead of
// failing the parse.
func executeArgs(ctx context.Context, cmd *cobra.Command, args []string) error {
	cmd.SetArgs(moveUnknownFlags(cmd.Flags(), args))
	return cmd.ExecuteContext(ctx)
}

func moveUnknownFlags(flags *pflag.FlagSet, args []string) []string {
	var kept, unknown []string
	for i, arg := range args {
		if arg == "--" {
			kept = append(kept, args[i:]...)
			break
		}
		if isKnownFlag(flags, arg) {
			kept = append(kept, arg)
		} else {
			unknown = append(unknown, arg)
		}
	}
	if len(unknown) == 0 {
		return kept
	}
	if !slices.Contains(kept, "--") {
		kept = append(kept, "--")
	}
	return append(kept, unknown...)
}

// isKnownFlag reports whether arg is a plain argument or a flag defined on
// flags. help and version are added by cobra at execute time.
func isKnownFlag(flags *pflag.FlagSet, arg string) bool {
	switch {
	case arg == "-" || !strings.HasPrefix(arg, "-"):
		return true
	case strings.HasPrefix(arg, "--"):
		name, _, _ := strings.Cut(arg[2:], "=")
		return name == "help" || name == "version" || flags.Lookup(name) != nil
	}
	for _, c := range arg[1:] {
		if c == 'h' {
			continue
		}
		if c > 127 || flags.ShorthandLookup(string(c)) == nil {
			return false
		}
	}
	return true
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := executeArgs(ctx, newRootCmd(os.Stdout, os.Stderr), os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

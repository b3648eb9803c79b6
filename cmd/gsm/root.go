package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/git"
	"github.com/g4-api/git-submodules-manager/internal/log"
	"github.com/g4-api/git-submodules-manager/internal/output"
	"github.com/g4-api/git-submodules-manager/internal/ui/styles"
)

var (
	// Global flags
	verbose      bool
	quiet        bool
	projectDir   string
	manifestFlag string
	lockFlag     string
)

// Command group IDs for organizing help output
const (
	GroupModules = "modules"
	GroupConfig  = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gsm",
	Short: "Pin git repositories into a project at exact commits",
	Long: `gsm places git repositories into a project as modules and pins each
one to an exact commit recorded in a lockfile.

Modules are declared in modules.json. install and update resolve the
declared ref, tag or default branch and record the commit; restore checks
out the recorded commits without resolving anything.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// setup resolves the project root and configuration and attaches them,
// together with the logger, to the command's context.
func setup(cmd *cobra.Command) error {
	if verbose && quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	l := log.New(os.Stderr, verbose, quiet)
	ctx = log.WithLogger(ctx, l)

	root, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(root)
	if err != nil {
		if !isConfigCommand(cmd) {
			return err
		}
		// config init must work with a broken config file
		l.Warn("ignoring invalid config", "error", err)
		def := config.Default()
		cfg = &def
	}
	if manifestFlag != "" {
		if cfg.Manifest, err = filepath.Abs(manifestFlag); err != nil {
			return err
		}
	}
	if lockFlag != "" {
		if cfg.Lockfile, err = filepath.Abs(lockFlag); err != nil {
			return err
		}
	}
	styles.Init(cfg.Theme)
	l.Debug("resolved project", "root", root, "manifest", cfg.ManifestPath(root), "lockfile", cfg.LockfilePath(root))

	ctx = config.WithConfig(ctx, cfg)
	ctx = config.WithWorkDir(ctx, root)
	cmd.SetContext(ctx)

	if isConfigCommand(cmd) || cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
		return nil
	}
	return git.CheckGit()
}

// projectRoot returns the absolute -C directory, or the working directory.
func projectRoot() (string, error) {
	dir := projectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project directory %s is not a directory", abs)
	}
	return abs, nil
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Add output printer (stdout for primary data)
	ctx = output.WithPrinter(ctx, os.Stdout)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gsm:", err)
		cancel()
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show git commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "Project root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&manifestFlag, "manifest", "", "Manifest file (default: <root>/modules.json)")
	rootCmd.PersistentFlags().StringVar(&lockFlag, "lock", "", "Lockfile (default: <root>/modules.lock.json)")

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupModules, Title: "Module Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newDoctorCmd())

	rootCmd.AddCommand(newConfigCmd())
}

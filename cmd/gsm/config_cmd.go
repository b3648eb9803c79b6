package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/log"
	"github.com/g4-api/git-submodules-manager/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage gsm configuration.

Global config: ~/.config/gsm/config.toml (or $GSM_CONFIG)
Local config:  .gsm.toml (at the project root)`,
		Example: `  gsm config init          # Create default global config
  gsm config init --local  # Create project config
  gsm config show          # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Long: `Create default config file.

Without flags, creates the global config.
With --local, creates .gsm.toml at the project root.`,
		Example: `  gsm config init           # Create global config
  gsm config init --local   # Create project config
  gsm config init -f        # Overwrite existing config
  gsm config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if stdout {
				if local {
					out.Print(config.DefaultLocalConfig())
				} else {
					out.Print(config.DefaultConfig())
				}
				return nil
			}

			var (
				path string
				err  error
			)
			if local {
				path, err = config.InitLocal(config.WorkDirFromContext(ctx), force)
			} else {
				path, err = config.Init(force)
			}
			if err != nil {
				return fmt.Errorf("%w (use -f to overwrite)", err)
			}
			out.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create project .gsm.toml instead of global config")

	return cmd
}

// shownConfig is the JSON shape of gsm config show.
type shownConfig struct {
	Root           string   `json:"root"`
	Manifest       string   `json:"manifest"`
	Lockfile       string   `json:"lockfile"`
	ModulesDir     string   `json:"modulesDir"`
	Remote         string   `json:"remote"`
	DefaultBranch  string   `json:"defaultBranch"`
	CommandTimeout string   `json:"commandTimeout"`
	Theme          string   `json:"theme,omitempty"`
	Hooks          []string `json:"hooks"`
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		Long: `Show the configuration gsm uses for the project: global config,
overridden by .gsm.toml, overridden by GSM_* environment variables.`,
		Example: `  gsm config show
  gsm config show --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			root := config.WorkDirFromContext(ctx)
			out := output.FromContext(ctx)

			hooks := make([]string, 0, len(cfg.Hooks.Hooks))
			for name := range cfg.Hooks.Hooks {
				hooks = append(hooks, name)
			}
			slices.Sort(hooks)

			shown := shownConfig{
				Root:           root,
				Manifest:       cfg.ManifestPath(root),
				Lockfile:       cfg.LockfilePath(root),
				ModulesDir:     cfg.ModulesDir,
				Remote:         cfg.Remote,
				DefaultBranch:  cfg.DefaultBranch,
				CommandTimeout: cfg.CommandTimeout.String(),
				Theme:          cfg.Theme,
				Hooks:          hooks,
			}
			log.FromContext(ctx).Debug("showing config", "hooks", len(hooks))

			if jsonOutput {
				enc := json.NewEncoder(out.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(shown)
			}

			out.Printf("root:            %s\n", shown.Root)
			out.Printf("manifest:        %s\n", shown.Manifest)
			out.Printf("lockfile:        %s\n", shown.Lockfile)
			out.Printf("modules_dir:     %s\n", shown.ModulesDir)
			out.Printf("remote:          %s\n", shown.Remote)
			out.Printf("default_branch:  %s\n", shown.DefaultBranch)
			out.Printf("command_timeout: %s\n", shown.CommandTimeout)
			if shown.Theme != "" {
				out.Printf("theme:           %s\n", shown.Theme)
			}
			for _, name := range hooks {
				h := cfg.Hooks.Hooks[name]
				out.Printf("hook %s: %s (on %v)\n", name, h.Command, h.On)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

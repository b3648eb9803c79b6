package main

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/lockfile"
	"github.com/g4-api/git-submodules-manager/internal/manifest"
)

// completeModules completes module names from the manifest and lockfile.
func completeModules(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, root := completionConfig(cmd)
	if cfg == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	if m, err := manifest.Load(cfg.ManifestPath(root)); err == nil {
		names = append(names, m.Names()...)
	}
	if doc, err := lockfile.Load(cfg.LockfilePath(root)); err == nil {
		for _, name := range doc.Names() {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeHooks completes configured hook names.
func completeHooks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, _ := completionConfig(cmd)
	if cfg == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for name := range cfg.Hooks.Hooks {
		names = append(names, name)
	}
	slices.Sort(names)
	return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(names []string, prefix string) []string {
	var matches []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			matches = append(matches, n)
		}
	}
	return matches
}

// completionConfig resolves configuration for shell completion, which runs
// without the root command's setup.
func completionConfig(cmd *cobra.Command) (*config.Config, string) {
	if ctx := cmd.Context(); ctx != nil {
		if cfg := config.FromContext(ctx); cfg != nil {
			return cfg, config.WorkDirFromContext(ctx)
		}
	}
	root, err := projectRoot()
	if err != nil {
		return nil, ""
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return nil, ""
	}
	return cfg, root
}

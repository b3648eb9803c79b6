package main

import (
	"github.com/spf13/cobra"

	"github.com/g4-api/git-submodules-manager/internal/orchestrator"
)

// hookFlags are the hook options shared by the module commands.
type hookFlags struct {
	hook   string
	noHook bool
	args   []string
}

func (f *hookFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.hook, "hook", "", "Run only this hook")
	cmd.Flags().BoolVar(&f.noHook, "no-hook", false, "Skip hooks")
	cmd.Flags().StringSliceVarP(&f.args, "arg", "a", nil, "Set hook variable KEY=VALUE (KEY=- reads stdin)")
	cmd.MarkFlagsMutuallyExclusive("hook", "no-hook")
	cmd.RegisterFlagCompletionFunc("hook", completeHooks)
}

func newModuleOpCmd(op orchestrator.Op, short, long, example string, aliases ...string) *cobra.Command {
	var hf hookFlags

	cmd := &cobra.Command{
		Use:               string(op) + " [module]",
		Short:             short,
		Long:              long,
		Example:           example,
		Aliases:           aliases,
		GroupID:           GroupModules,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeModules,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			return runModuleOp(cmd.Context(), op, filter, hf)
		},
	}
	hf.register(cmd)
	return cmd
}

func newInstallCmd() *cobra.Command {
	return newModuleOpCmd(orchestrator.OpInstall,
		"Materialize modules and pin them",
		`Materialize every module (or the named one) and pin it to its desired
reference: ref if set, else tag, else the remote's default branch.

Lock entries whose commit, directory and subtree did not change are left
untouched, so re-running install on an up-to-date project does not
modify the lockfile.`,
		`  gsm install          # Install all modules
  gsm install lib      # Install only lib
  gsm install --no-hook`,
		"i")
}

func newUpdateCmd() *cobra.Command {
	return newModuleOpCmd(orchestrator.OpUpdate,
		"Re-resolve references and re-pin modules",
		`Fetch every module (or the named one), resolve its desired reference
again and record the new commit. The entry timestamp is refreshed even
when the commit did not move.`,
		`  gsm update           # Move all modules to their latest commits
  gsm update lib`,
		"up")
}

func newRestoreCmd() *cobra.Command {
	return newModuleOpCmd(orchestrator.OpRestore,
		"Check out the locked commits",
		`Check out the commit recorded in the lockfile for every locked module
(or the named one). References are never resolved, so restore reproduces
exactly what was pinned. Modules without a lock entry are skipped.`,
		`  gsm restore          # Reproduce the locked state
  gsm restore lib`)
}

func newRemoveCmd() *cobra.Command {
	return newModuleOpCmd(orchestrator.OpRemove,
		"Delete module working copies and lock entries",
		`Delete the working copy and lock entry of every module (or the named
one). Lock entries whose module was dropped from the manifest are removed
too. The manifest itself is never edited.`,
		`  gsm remove lib       # Remove lib
  gsm remove           # Remove every module`,
		"rm")
}

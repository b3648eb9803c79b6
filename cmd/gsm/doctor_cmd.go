package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/doctor"
	"github.com/g4-api/git-submodules-manager/internal/ui/prompt"
)

func newDoctorCmd() *cobra.Command {
	var fix, yes bool

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Diagnose the manifest, lockfile and working copies",
		GroupID: GroupModules,
		Args:    cobra.NoArgs,
		Long: `Check the lockfile against the manifest and every locked working copy
against the lockfile.

With --fix, lock entries whose module and directory are both gone are
dropped and temporary files of interrupted runs are deleted. Other
issues are listed with the command that resolves them.`,
		Example: `  gsm doctor         # Check only
  gsm doctor --fix   # Apply automatic fixes after confirming
  gsm doctor --fix -y`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			root := config.WorkDirFromContext(ctx)

			m, err := loadManifest(cfg, root, "")
			if err != nil {
				return err
			}
			opts := doctor.Options{Fix: fix}
			if !yes && prompt.Interactive() {
				opts.Confirm = func(p string) (bool, error) {
					res, err := prompt.Confirm(p)
					return res.Confirmed, err
				}
			}
			r, err := doctor.Run(ctx, root, cfg, m, opts)
			if err != nil {
				return err
			}
			if remaining := r.Stats.Unfixable + r.Stats.Fixable - r.Fixed; remaining > 0 {
				return fmt.Errorf("%d issues remain", remaining)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Apply automatic fixes")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply fixes without asking")

	return cmd
}

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/lockfile"
	"github.com/g4-api/git-submodules-manager/internal/output"
	"github.com/g4-api/git-submodules-manager/internal/ui/static"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Compare working copies with the lockfile",
		Aliases: []string{"st"},
		GroupID: GroupModules,
		Args:    cobra.NoArgs,
		Long: `Show every module with its locked commit and the commit its working
copy is at. Nothing is fetched or modified.

States:
  ok        working copy is at the locked commit
  drift     working copy is at another commit
  missing   locked, but the directory holds no repository
  unlocked  in the manifest, never installed
  orphan    locked, but no longer in the manifest`,
		Example: `  gsm status
  gsm status --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			root := config.WorkDirFromContext(ctx)
			out := output.FromContext(ctx)

			m, err := loadManifest(cfg, root, "")
			if err != nil {
				return err
			}
			doc, err := lockfile.Load(cfg.LockfilePath(root))
			if err != nil {
				return err
			}

			rows := collectStatus(ctx, root, cfg.ModulesDir, m, doc)
			if jsonOutput {
				enc := json.NewEncoder(out.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			if len(rows) == 0 {
				out.Println("No modules")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, r.cells())
			}
			out.Styled(static.RenderTable(statusHeaders, table))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

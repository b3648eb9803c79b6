package doctor

import (
	"errors"
	"fmt"
	"os"

	"github.com/g4-api/git-submodules-manager/internal/lockfile"
	"github.com/g4-api/git-submodules-manager/internal/output"
)

// fixAllIssues applies fixes for all detected issues and saves the
// lockfile if an entry was dropped. Returns the number of fixes applied.
func fixAllIssues(out *output.Printer, store *lockfile.Store, doc *lockfile.Document, issues []Issue) (int, error) {
	var fixed, failed int
	next := doc

	for _, issue := range issues {
		switch issue.FixAction {
		case FixDropEntry:
			next = lockfile.Remove(next, issue.Key)
			out.Printf("  ✓ Dropped lock entry %q\n", issue.Key)
			fixed++

		case FixDeleteFile:
			if err := os.Remove(issue.Key); err != nil && !errors.Is(err, os.ErrNotExist) {
				out.Printf("  ✗ Failed to delete %s: %v\n", issue.Key, err)
				failed++
				continue
			}
			out.Printf("  ✓ Deleted %s\n", issue.Key)
			fixed++
		}
	}

	if next != doc {
		if err := store.Save(next); err != nil {
			return fixed, fmt.Errorf("save lockfile: %w", err)
		}
	}

	out.Printf("\nFixed %d issues", fixed)
	if failed > 0 {
		out.Printf(", %d failed", failed)
	}
	out.Println()

	if failed > 0 {
		return fixed, fmt.Errorf("%d fixes failed", failed)
	}
	return fixed, nil
}

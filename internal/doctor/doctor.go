package doctor

import (
	"context"
	"fmt"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/lockfile"
	"github.com/g4-api/git-submodules-manager/internal/log"
	"github.com/g4-api/git-submodules-manager/internal/manifest"
	"github.com/g4-api/git-submodules-manager/internal/output"
)

// Report is the outcome of a doctor run.
type Report struct {
	Stats  Stats
	Issues []Issue
	Fixed  int
}

// Options controls what Run does after checking.
type Options struct {
	Fix bool
	// Confirm is asked before fixes are applied. nil applies them.
	Confirm func(prompt string) (bool, error)
}

// Run checks the project at root and, with opts.Fix, applies automatic
// fixes. The lockfile is held for the whole run.
func Run(ctx context.Context, root string, cfg *config.Config, m *manifest.Manifest, opts Options) (*Report, error) {
	out := output.FromContext(ctx)
	l := log.FromContext(ctx)

	lockPath := cfg.LockfilePath(root)
	store, doc, err := lockfile.Open(lockPath)
	if err != nil {
		return nil, fmt.Errorf("open lockfile %s: %w", lockPath, err)
	}
	defer store.Close()

	r := &Report{}
	r.Stats.Entries = len(doc.Modules)

	out.Println("Checking lockfile...")
	r.Issues = append(r.Issues, checkLockEntries(root, m, doc)...)

	out.Println("Checking modules...")
	moduleIssues, checked, healthy := checkModules(ctx, root, cfg.ModulesDir, cfg.Remote, m, doc)
	r.Issues = append(r.Issues, moduleIssues...)
	r.Stats.Modules, r.Stats.Healthy = checked, healthy

	out.Println("Checking for leftovers...")
	r.Issues = append(r.Issues, checkLeftovers(root, lockPath, m)...)

	for _, issue := range r.Issues {
		if issue.FixAction != FixNone {
			r.Stats.Fixable++
		} else {
			r.Stats.Unfixable++
		}
	}
	l.Debug("doctor checks done", "issues", len(r.Issues), "fixable", r.Stats.Fixable)

	printSummary(out, r.Stats)
	if len(r.Issues) == 0 {
		out.Println("\n✓ No issues found")
		return r, nil
	}

	out.Printf("\nFound %d issues:\n", len(r.Issues))
	printIssuesByCategory(out, r.Issues)

	if !opts.Fix || r.Stats.Fixable == 0 {
		if r.Stats.Fixable > 0 {
			out.Println("\nRun 'gsm doctor --fix' to repair.")
		}
		return r, nil
	}
	if opts.Confirm != nil {
		ok, err := opts.Confirm(fmt.Sprintf("Apply %d fixes?", r.Stats.Fixable))
		if err != nil {
			return r, err
		}
		if !ok {
			out.Println("\nNo changes made.")
			return r, nil
		}
	}

	out.Println("\nFixing...")
	r.Fixed, err = fixAllIssues(out, store, doc, r.Issues)
	return r, err
}

// printSummary prints a categorized summary.
func printSummary(out *output.Printer, stats Stats) {
	out.Println()
	out.Printf("  ✓ %d lock entries read\n", stats.Entries)
	if stats.Modules > 0 {
		out.Printf("  ✓ %d of %d locked modules at their locked commit\n", stats.Healthy, stats.Modules)
	}
	if stats.Fixable > 0 {
		out.Printf("  ⚠ %d fixable\n", stats.Fixable)
	}
	if stats.Unfixable > 0 {
		out.Printf("  ✗ %d need attention\n", stats.Unfixable)
	}
}

// printIssuesByCategory groups and prints issues.
func printIssuesByCategory(out *output.Printer, issues []Issue) {
	byCategory := make(map[IssueCategory][]Issue)
	for _, issue := range issues {
		byCategory[issue.Category] = append(byCategory[issue.Category], issue)
	}

	categoryNames := map[IssueCategory]string{
		CategoryLockfile: "Lockfile issues",
		CategoryModule:   "Module issues",
		CategoryFiles:    "Leftover files",
	}

	for _, cat := range []IssueCategory{CategoryLockfile, CategoryModule, CategoryFiles} {
		catIssues := byCategory[cat]
		if len(catIssues) == 0 {
			continue
		}

		out.Printf("\n%s:\n", categoryNames[cat])
		for _, issue := range catIssues {
			out.Printf("  • %s: %s\n", issue.Key, issue.Description)
			if issue.Hint != "" {
				out.Printf("      run: %s\n", issue.Hint)
			}
		}
	}
}

package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/g4-api/git-submodules-manager/internal/testutil"
)

func TestNormalizeSubtree(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":             "",
		".":            "",
		"./":           "",
		"src/lib":      "src/lib",
		"./src/lib/":   "src/lib",
		`src\lib`:      "src/lib",
		"src//lib/../": "src",
	}
	for in, want := range tests {
		if got := NormalizeSubtree(in); got != want {
			t.Errorf("NormalizeSubtree(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSparseCheckoutDetached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	remote := testutil.NewRemote(t, "main")
	remote.Commit("lib/a.txt", "a\n", "Add lib")
	target := remote.Commit("docs/b.txt", "b\n", "Add docs")
	remote.Commit("lib/c.txt", "c\n", "Later change")

	dest := filepath.Join(testutil.TempDir(t), "mod")
	if err := Clone(ctx, remote.Path, dest, "origin"); err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if err := SetSparse(ctx, dest, "lib"); err != nil {
		t.Fatalf("SetSparse: %v", err)
	}
	if err := CheckoutDetached(ctx, dest, target); err != nil {
		t.Fatalf("CheckoutDetached: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dest, "lib", "a.txt")); err != nil {
		t.Errorf("lib/a.txt missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "lib", "c.txt")); !os.IsNotExist(err) {
		t.Errorf("lib/c.txt present, want file from later commit absent")
	}
	if _, err := os.Stat(filepath.Join(dest, "docs")); !os.IsNotExist(err) {
		t.Errorf("docs/ present outside sparse cone")
	}
	if !IsDetached(ctx, dest) {
		t.Error("HEAD not detached")
	}

	// Widening back to the whole repository.
	if err := SetSparse(ctx, dest, "."); err != nil {
		t.Fatalf("SetSparse(.): %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "docs", "b.txt")); err != nil {
		t.Errorf("docs/b.txt missing after disabling sparse checkout: %v", err)
	}
}

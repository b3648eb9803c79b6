// Package testutil provides git repository fixtures for tests.
//
// Fixtures build real repositories in t.TempDir(): a bare "origin" plus a
// seed clone used to author commits, branches and tags and push them. Code
// under test then clones or fetches from the bare origin exactly as it would
// from a hosted remote.
package testutil

// Package doctor detects and optionally repairs inconsistencies between a
// project's manifest, its lockfile and the module working copies.
//
// Issues fall into three categories:
//
//   - [CategoryLockfile]: entries with malformed commits or missing fields,
//     duplicate names, and entries whose module left the manifest.
//
//   - [CategoryModule]: locked modules whose directory holds no repository,
//     sits at another commit, points at another remote, or was materialized
//     with the other strategy.
//
//   - [CategoryFiles]: temporary files left behind by an interrupted run.
//
// Only two fixes are automatic: dropping orphan lock entries whose
// directory is already gone, and deleting leftover temporary files.
// Everything else is reported with the command that resolves it.
package doctor

// Package orchestrator drives install, update, restore and remove across
// the modules of a project.
//
// Modules are processed one at a time. Each runs under its own deadline
// (config command_timeout); a failure is recorded in the [Report] as a
// [ModuleError] and the run moves on to the next module. The lockfile is
// held under an exclusive lock for the whole run and rewritten after every
// module that changed it.
//
// Per module, install and update share one pipeline:
//
//	EnsurePresent -> EnsureFull -> DesiredRef -> Resolve -> Narrow -> Checkout -> Upsert -> artifacts, hooks
//
// restore replaces the ref steps with the locked commit checked by
// EnsureCommitAvailable, and remove runs the materializer's cleanup before
// dropping the lock entry.
package orchestrator

// Package lockfile reads, reconciles and writes the gsm lockfile.
//
// The lockfile records, per module name, the exact commit the module was
// last pinned to:
//
//	{
//	  "modules": [
//	    {
//	      "name": "lib",
//	      "repo": "https://github.com/org/lib.git",
//	      "targetDir": "modules/lib",
//	      "localPath": "src",
//	      "resolvedCommit": "3f0c9e7d...",
//	      "updatedAtUtc": "2026-01-02T15:04:05Z"
//	    }
//	  ]
//	}
//
// [Upsert] and [Remove] are pure transforms over a [Document]; callers
// persist the whole document with [Store.Save] after every module so an
// interrupted run still records the modules it finished.
//
// # Concurrency
//
// [Open] takes an flock on "<lockfile>.lock" for the lifetime of the
// [Store]; a second gsm process on the same project fails with [ErrLocked]
// instead of interleaving writes.
package lockfile

package doctor

// IssueCategory groups issues by type.
type IssueCategory string

const (
	// CategoryLockfile represents problems with lock entries.
	CategoryLockfile IssueCategory = "lockfile"
	// CategoryModule represents working copies that disagree with the lockfile.
	CategoryModule IssueCategory = "module"
	// CategoryFiles represents leftovers of interrupted runs.
	CategoryFiles IssueCategory = "files"
)

// FixAction is what --fix does about an issue.
type FixAction string

const (
	FixNone       FixAction = ""
	FixDropEntry  FixAction = "drop_entry"
	FixDeleteFile FixAction = "delete_file"
)

// Issue represents a problem detected by doctor.
type Issue struct {
	Key         string        // module name or file path
	Description string        // human-readable description
	Hint        string        // command that resolves it when there is no fix
	FixAction   FixAction     // what --fix would do
	Category    IssueCategory // issue category
}

// Stats tracks counts by category.
type Stats struct {
	Entries   int // lock entries checked
	Modules   int // locked manifest modules checked
	Healthy   int // modules at their locked commit
	Fixable   int
	Unfixable int
}

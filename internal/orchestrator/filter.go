package orchestrator

import (
	"fmt"

	"github.com/sahilm/fuzzy"
)

// unknownModule reports a filter that names no module, suggesting the
// closest known name.
func unknownModule(filter string, names []string) error {
	if s := suggest(filter, names); s != "" {
		return fmt.Errorf("%w %q, did you mean %q?", ErrUnknownModule, filter, s)
	}
	return fmt.Errorf("%w %q", ErrUnknownModule, filter)
}

// suggest returns the best fuzzy match for input among names. A name that
// is a subsequence of input also counts, which catches extra characters.
func suggest(input string, names []string) string {
	if len(names) == 0 || input == "" {
		return ""
	}
	if matches := fuzzy.Find(input, names); len(matches) > 0 {
		return matches[0].Str
	}
	for _, name := range names {
		if len(fuzzy.Find(name, []string{input})) > 0 {
			return name
		}
	}
	return ""
}

package github

import (
	"fmt"
	"strings"
)

type MergeMethod string

const (
	MergeMethodMerge  MergeMethod = "merge"
	MergeMethodRebase MergeMethod = "rebase"
	MergeMethodSquash MergeMethod = "squash"
)

func (m MergeMethod) String() string {
	return string(m)
}

// Flag returns the gh pr merge flag selecting this method, e.g. "--squash".
func (m MergeMethod) Flag() string {
	return "--" + string(m)
}

// ParseMergeMethod accepts merge, squash or rebase in any case.
func ParseMergeMethod(s string) (MergeMethod, error) {
	switch m := MergeMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case MergeMethodMerge, MergeMethodRebase, MergeMethodSquash:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMergeMethod, s)
}

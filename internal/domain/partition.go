package domain

import "slices"

// PartitionByCompletion moves completed tasks behind incomplete ones.
// The sort is stable and compares completion only, so creation order is
// kept inside each group.
func PartitionByCompletion(tasks []*Task) {
	slices.SortStableFunc(tasks, func(a, b *Task) int {
		return completionRank(a) - completionRank(b)
	})
}

// IsPartitioned reports whether no completed task precedes an incomplete one.
func IsPartitioned(tasks []*Task) bool {
	seenCompleted := false
	for _, t := range tasks {
		if t.Completed {
			seenCompleted = true
		} else if seenCompleted {
			return false
		}
	}
	return true
}

func completionRank(t *Task) int {
	if t.Completed {
		return 1
	}
	return 0
}

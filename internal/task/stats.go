package task

import "sort"

// CategoryCount is the number of tasks carrying one category.
type CategoryCount struct {
	Category string
	Count    int
}

// Stats summarizes a task collection for the board view.
type Stats struct {
	Total      int
	ByStatus   map[Status]int
	Categories []CategoryCount // first-seen order
	Progress   int             // percent of tasks with status done, rounded
}

// Summarize computes board statistics. Progress counts Status, not
// Completed, so a task moved to done on the board counts as progress.
func Summarize(tasks []Task) Stats {
	st := Stats{
		Total:    len(tasks),
		ByStatus: make(map[Status]int, len(Pipeline)),
	}
	index := make(map[string]int)
	for _, t := range tasks {
		st.ByStatus[t.Status]++
		cat := t.Category
		if cat == "" {
			cat = "Other"
		}
		i, ok := index[cat]
		if !ok {
			i = len(st.Categories)
			index[cat] = i
			st.Categories = append(st.Categories, CategoryCount{Category: cat})
		}
		st.Categories[i].Count++
	}
	if st.Total > 0 {
		st.Progress = (st.ByStatus[StatusDone]*100 + st.Total/2) / st.Total
	}
	return st
}

// SortedCategories returns categories by descending count, ties by name.
func (s Stats) SortedCategories() []CategoryCount {
	out := make([]CategoryCount, len(s.Categories))
	copy(out, s.Categories)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

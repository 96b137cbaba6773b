package models

import "sort"

// Group is the approved submissions sharing one gothram.
type Group struct {
	Gothram     string        `json:"gothram"`
	Submissions []*Submission `json:"submissions"`
	Count       int           `json:"count"`
}

// GroupByGothram partitions submissions by gothram. Groups are ordered by key
// ascending; members keep their input order.
func GroupByGothram(subs []*Submission) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, s := range subs {
		i, ok := index[s.Gothram]
		if !ok {
			i = len(groups)
			index[s.Gothram] = i
			groups = append(groups, Group{Gothram: s.Gothram})
		}
		groups[i].Submissions = append(groups[i].Submissions, s)
	}
	for i := range groups {
		groups[i].Count = len(groups[i].Submissions)
	}
	sort.Slice(groups, func(a, b int) bool {
		return groups[a].Gothram < groups[b].Gothram
	})
	if groups == nil {
		groups = []Group{}
	}
	return groups
}

// SortForDisplay orders submissions by gothram, house name, then name, the
// order every list endpoint returns. Ties keep ID order.
func SortForDisplay(subs []*Submission) {
	sort.SliceStable(subs, func(a, b int) bool {
		x, y := subs[a], subs[b]
		if x.Gothram != y.Gothram {
			return x.Gothram < y.Gothram
		}
		if hx, hy := deref(x.HouseName), deref(y.HouseName); hx != hy {
			return hx < hy
		}
		if x.Name != y.Name {
			return x.Name < y.Name
		}
		return x.ID < y.ID
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

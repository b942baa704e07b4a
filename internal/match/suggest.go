package match

import (
	"sort"
)

// DefaultThreshold is the minimum similarity for a name to be suggested.
const DefaultThreshold = 0.6

// Candidate is a declared name scored against an unknown one.
type Candidate struct {
	Name  string
	Score float64
}

// CandidateList is sorted best first.
type CandidateList []Candidate

// Rank scores every candidate against name after NormalizeIdent and returns
// those at or above threshold, best first. Ties keep the input order.
func Rank(name string, candidates []string, threshold float64) CandidateList {
	target := NormalizeIdent(name)

	var out CandidateList

	for _, c := range candidates {
		score := Similarity(target, NormalizeIdent(c))
		if score >= threshold {
			out = append(out, Candidate{Name: c, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}

// Names returns at most n candidate names.
func (l CandidateList) Names(n int) []string {
	if n > len(l) {
		n = len(l)
	}

	names := make([]string, 0, n)
	for _, c := range l[:n] {
		names = append(names, c.Name)
	}

	return names
}

// Suggest returns up to n declared names that look like name.
func Suggest(name string, candidates []string, n int) []string {
	return Rank(name, candidates, DefaultThreshold).Names(n)
}

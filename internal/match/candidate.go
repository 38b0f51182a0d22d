package match

import "sort"

// DefaultThreshold is the minimum score Suggest accepts.
const DefaultThreshold = 0.5

// Candidate is a known name scored against a query.
type Candidate struct {
	Name  string
	Score float64 // 0..1, higher is closer
	Exact bool    // equal after normalization
}

// CandidateList is sorted best first.
type CandidateList []Candidate

// Rank scores every name against query. Names equal to query after
// normalization score 1 and are marked Exact; the rest score by the
// similarity of their normalized forms.
func Rank(query string, names []string) CandidateList {
	q := NormalizeIdent(query)

	out := make(CandidateList, 0, len(names))
	for _, name := range names {
		n := NormalizeIdent(name)
		out = append(out, Candidate{Name: name, Score: Similarity(q, n), Exact: q == n})
	}
	sort.Sort(out)

	return out
}

// Suggest returns the name closest to query when its score reaches threshold.
func Suggest(query string, names []string, threshold float64) (string, bool) {
	best := Rank(query, names).Best()
	if best == nil || best.Score < threshold {
		return "", false
	}

	return best.Name, true
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Higher score first, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}
	return c[i].Name < c[j].Name
}

// Top returns the first n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}
	return c[:n]
}

// Best returns the best candidate, or nil if there are none.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}
	return &c[0]
}

// Names returns the candidate names in rank order.
func (c CandidateList) Names() []string {
	names := make([]string, len(c))
	for i, cand := range c {
		names[i] = cand.Name
	}
	return names
}

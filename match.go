package main

import (
	"math"
	"strings"

	"github.com/jbrukh/bayesian"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Oracle scores how alike two account names are on a 0-100 scale. The rest
// of the matcher treats it as a black box.
type Oracle interface {
	Score(candidate, query string) int
	Best(query string, candidates []string) (string, int)
}

func bestOf(o Oracle, query string, candidates []string) (string, int) {
	best, bestScore := "", -1
	for _, c := range candidates {
		if s := o.Score(c, query); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, bestScore
}

// fuzzyOracle scores names with token-sort ratio, which ignores word order.
// Account names across charts tend to share tokens but not their ordering.
type fuzzyOracle struct{}

func (fuzzyOracle) Score(candidate, query string) int {
	return fuzzy.TokenSortRatio(candidate, query)
}

func (o fuzzyOracle) Best(query string, candidates []string) (string, int) {
	return bestOf(o, query, candidates)
}

// bayesOracle ranks candidate names with a naive bayes classifier trained on
// the target chart, one class per distinct name. Scores are the
// softmax-normalized posterior of the candidate's class, scaled to 0-100.
type bayesOracle struct {
	classes []bayesian.Class
	cl      *bayesian.Classifier
}

func newBayesOracle(entries []ChartEntry) *bayesOracle {
	o := &bayesOracle{}
	seen := make(map[string]bool)
	for _, e := range entries {
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		o.classes = append(o.classes, bayesian.Class(e.Name))
	}
	if len(o.classes) < 2 {
		// The classifier needs at least two classes. Score degrades to an
		// exact-name comparison.
		return o
	}
	o.cl = bayesian.NewClassifierTfIdf(o.classes...)
	for _, class := range o.classes {
		o.cl.Learn(nameTerms(string(class)), class)
	}
	o.cl.ConvertTermsFreqToTfIdf()
	return o
}

func nameTerms(name string) []string {
	return strings.Fields(strings.ToLower(name))
}

func (o *bayesOracle) Score(candidate, query string) int {
	if o.cl == nil {
		if strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(query)) {
			return 100
		}
		return 0
	}
	scores, _, _ := o.cl.LogScores(nameTerms(query))
	maxScore := scores[0]
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	exp := make([]float64, len(scores))
	for i, s := range scores {
		exp[i] = math.Exp(s - maxScore)
		sum += exp[i]
	}
	for i, class := range o.classes {
		if string(class) == candidate {
			return int(math.Round(100 * exp[i] / sum))
		}
	}
	return 0
}

func (o *bayesOracle) Best(query string, candidates []string) (string, int) {
	return bestOf(o, query, candidates)
}

// Suggestion is the matcher's best guess for one source account.
type Suggestion struct {
	Entry ChartEntry
	Score int
	Found bool
}

func (s Suggestion) Confident(threshold int) bool {
	return s.Found && s.Score >= threshold
}

// suggest narrows the target chart to the source account's group, falling
// back to the whole chart when that group has no entries, and returns the
// highest-scoring candidate. Ties keep the earliest candidate in chart
// order. Found is false only for an empty chart.
func suggest(acc SourceAccount, chart []ChartEntry, o Oracle) Suggestion {
	pool := chartGroup(chart, acc.Group)
	if len(pool) == 0 {
		pool = chart
	}
	if len(pool) == 0 {
		return Suggestion{}
	}

	names := make([]string, len(pool))
	for i, e := range pool {
		names[i] = e.Name
	}
	name, score := o.Best(acc.Name, names)
	for _, e := range pool {
		if e.Name == name {
			return Suggestion{Entry: e, Score: score, Found: true}
		}
	}
	// An oracle returning a name outside its candidates is misbehaving;
	// treat it as no suggestion rather than guessing.
	return Suggestion{}
}

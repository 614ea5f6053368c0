package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/manishrjain/keys"
)

const (
	nameLength   = 40
	targetLength = 28
	quitResult   = 999999.0
)

type viewFilter int

const (
	viewAll viewFilter = iota
	viewPending
	viewMapped
)

// reviewer drives the interactive mapping pass: one colored row per source
// account, single-keystroke selection of a target, filterable views. All
// choices land in the shared Mapping, so hiding and reshowing accounts
// never loses state.
type reviewer struct {
	accounts  []SourceAccount
	chart     []ChartEntry
	byDisplay map[string]ChartEntry
	byCode    map[string]ChartEntry
	sugg      map[string]Suggestion
	ai        map[string]aiDecision
	mapping   *Mapping
	oracle    Oracle
	threshold int

	// Chart-wide shortcut tree (group, then entry), persisted across runs.
	chartShort *keys.Shortcuts
}

func newReviewer(accounts []SourceAccount, chart []ChartEntry, sugg map[string]Suggestion,
	mapping *Mapping, oracle Oracle, threshold int, chartShort *keys.Shortcuts) *reviewer {
	return &reviewer{
		accounts:   accounts,
		chart:      chart,
		byDisplay:  chartByDisplay(chart),
		byCode:     chartByCode(chart),
		sugg:       sugg,
		mapping:    mapping,
		oracle:     oracle,
		threshold:  threshold,
		chartShort: chartShort,
	}
}

func setDefaultMappings(ks *keys.Shortcuts) {
	ks.BestEffortAssign('b', ".back", "default")
	ks.BestEffortAssign('q', ".quit", "default")
	ks.BestEffortAssign('s', ".skip", "default")
	ks.BestEffortAssign('a', ".show all", "default")
	ks.BestEffortAssign('e', ".manual", "default")
	ks.BestEffortAssign('x', ".clear", "default")
}

// buildChartShortcuts lays the whole target chart into a two-level shortcut
// tree: pick a group first, then an entry of that group.
func buildChartShortcuts(ks *keys.Shortcuts, entries []ChartEntry) {
	ks.BestEffortAssign('b', ".back", "default")
	seen := make(map[string]bool)
	for _, e := range entries {
		label := "group " + e.Group
		if !seen[label] {
			seen[label] = true
			ks.AutoAssign(label, "default")
			ks.BestEffortAssign('b', ".back", label)
		}
		ks.AutoAssign(e.Display, label)
	}
}

// targetLabel renders a mapped code for display. Manual codes have no chart
// entry; they are reconstructed verbatim from the stored value.
func (r *reviewer) targetLabel(code string) string {
	if e, has := r.byCode[code]; has {
		return e.Display
	}
	return "manual: " + code
}

func (r *reviewer) printSummary(acc SourceAccount, idx, total int) {
	if _, has := r.mapping.Get(acc.ID); has {
		color.New(color.BgGreen, color.FgBlack).Printf(" M ")
	} else {
		color.New(color.BgRed, color.FgWhite).Printf(" P ")
	}
	color.New(color.BgBlue, color.FgWhite).Printf(" [%3d of %3d] ", idx+1, total)
	color.New(color.BgYellow, color.FgBlack).Printf(" %-12s ", trunc(acc.Classification, 12))
	color.New(color.BgWhite, color.FgBlack).Printf(" %-40s", trunc(acc.Name, nameLength))
	if code, has := r.mapping.Get(acc.ID); has {
		color.New(color.BgGreen, color.FgBlack).Printf(" %-28s ", trunc(r.targetLabel(code), targetLength))
	}
	fmt.Println()
}

func (r *reviewer) filtered(filter viewFilter) []SourceAccount {
	if filter == viewAll {
		return r.accounts
	}
	var shown []SourceAccount
	for _, acc := range r.accounts {
		_, mapped := r.mapping.Get(acc.ID)
		if (filter == viewMapped) == mapped {
			shown = append(shown, acc)
		}
	}
	return shown
}

// autoAccept pre-fills the mapping with every suggestion at or above the
// threshold. The user still reviews everything afterwards.
func (r *reviewer) autoAccept() {
	var count int
	for _, acc := range r.accounts {
		if _, has := r.mapping.Get(acc.ID); has {
			continue
		}
		if sg := r.sugg[acc.ID]; sg.Confident(r.threshold) {
			r.mapping.Set(acc.ID, sg.Entry.Code)
			count++
		}
	}
	fmt.Printf("\t%d accounts auto-mapped at or above threshold %d.\n\n", count, r.threshold)
}

// rankCandidates scores the account's candidate pool and returns the top n
// in descending score order, stable so chart order breaks ties.
func (r *reviewer) rankCandidates(acc SourceAccount, n int) []Suggestion {
	pool := chartGroup(r.chart, acc.Group)
	if len(pool) == 0 {
		pool = r.chart
	}
	ranked := make([]Suggestion, 0, len(pool))
	for _, e := range pool {
		ranked = append(ranked, Suggestion{Entry: e, Score: r.oracle.Score(e.Name, acc.Name), Found: true})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// run is the outer review loop. It returns false when the user quits
// without finishing. Leaving via "done" is gated on a complete mapping, so
// a true return means every account has a target.
func (r *reviewer) run() bool {
	filter := viewAll
	for {
		shown := r.filtered(filter)
		clear()
		for i, acc := range shown {
			r.printSummary(acc, i, len(shown))
		}
		fmt.Println()
		pending := r.mapping.Pending(r.accounts)
		fmt.Printf("%d accounts, %d mapped, %d pending. Review (Y=review, n=done, q=quit, p=pending, m=mapped, a=all)? ",
			len(r.accounts), r.mapping.Count(), pending)
		b := make([]byte, 1)
		os.Stdin.Read(b)
		fmt.Println()

		switch b[0] {
		case 'q':
			return false
		case 'n':
			if pending > 0 {
				errc(" %d accounts still have no target. Map them or quit. ", pending)
				fmt.Println()
				continue
			}
			return true
		case 'p':
			filter = viewPending
			continue
		case 'm':
			filter = viewMapped
			continue
		case 'a':
			filter = viewAll
			continue
		}
		if len(shown) == 0 {
			filter = viewAll
			continue
		}

		for i := 0; i < len(shown) && i >= 0; {
			res := r.mapAccount(shown[i], i, len(shown))
			if res >= quitResult {
				return false
			}
			i += int(res)
		}
	}
}

// mapAccount shows one account with its suggestion and candidate shortcuts
// and applies the user's keystroke. The float result moves the cursor the
// way the outer loop expects: 1 forward, -1 back, 0 stay.
func (r *reviewer) mapAccount(acc SourceAccount, idx, total int) float64 {
	clear()
	r.printSummary(acc, idx, total)
	fmt.Println()
	if len(acc.Name) > nameLength {
		color.New(color.BgWhite, color.FgBlack).Printf("%6s %s ", "[NAME]", acc.Name)
		fmt.Println()
	}
	if sg := r.sugg[acc.ID]; sg.Found {
		if sg.Confident(r.threshold) {
			color.New(color.BgGreen, color.FgBlack).Printf(" SUGGESTION %3d%% %s ", sg.Score, sg.Entry.Display)
		} else {
			color.New(color.BgYellow, color.FgBlack).Printf(" LOW MATCH  %3d%% %s ", sg.Score, sg.Entry.Display)
		}
		fmt.Println()
	}
	if d, has := r.ai[acc.ID]; has {
		color.New(color.BgCyan, color.FgBlack).Printf("[AI] %s (%d%%) %s", r.targetLabel(d.Code), d.Confidence, d.Reasoning)
		fmt.Println()
	}
	fmt.Println()

	var ks keys.Shortcuts
	setDefaultMappings(&ks)
	if d, has := r.ai[acc.ID]; has {
		if e, ok := r.byCode[d.Code]; ok {
			ks.AutoAssign(e.Display, "default")
		}
	}
	for _, cand := range r.rankCandidates(acc, 5) {
		ks.AutoAssign(cand.Entry.Display, "default")
	}
	return r.printAndGetResult(ks, acc)
}

func (r *reviewer) printAndGetResult(ks keys.Shortcuts, acc SourceAccount) float64 {
	ks.Print("default", false)
	b := make([]byte, 1)
	os.Stdin.Read(b)
	ch := rune(b[0])

	// Enter keeps the current target, or accepts a confident suggestion.
	if ch == rune(10) {
		if _, has := r.mapping.Get(acc.ID); has {
			return 1.0
		}
		if sg := r.sugg[acc.ID]; sg.Confident(r.threshold) {
			r.mapping.Set(acc.ID, sg.Entry.Code)
			return 1.0
		}
		return 0
	}

	opt, has := ks.MapsTo(ch, "default")
	if !has {
		return 0
	}
	switch opt {
	case ".back":
		return -1.0
	case ".skip":
		return 1.1
	case ".quit":
		return quitResult
	case ".clear":
		r.mapping.Clear(acc.ID)
		return 0
	case ".manual":
		fmt.Printf("Target code: ")
		if code := readLine(); len(code) > 0 {
			r.mapping.Set(acc.ID, code)
			return 1.0
		}
		return 0
	case ".show all":
		if code, picked := r.pickFromChart(); picked {
			r.mapping.Set(acc.ID, code)
			return 1.0
		}
		return 0
	}
	if e, ok := r.byDisplay[opt]; ok {
		r.mapping.Set(acc.ID, e.Code)
		return 1.0
	}
	return 0
}

// pickFromChart walks the chart-wide shortcut tree: group first, then entry.
func (r *reviewer) pickFromChart() (string, bool) {
	label := "default"
	for {
		fmt.Println()
		r.chartShort.Print(label, false)
		b := make([]byte, 1)
		os.Stdin.Read(b)
		opt, has := r.chartShort.MapsTo(rune(b[0]), label)
		if !has || opt == ".back" {
			return "", false
		}
		if e, ok := r.byDisplay[opt]; ok {
			return e.Code, true
		}
		if r.chartShort.HasLabel(opt) {
			label = opt
			continue
		}
		return "", false
	}
}

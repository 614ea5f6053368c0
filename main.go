package main

import (
	"flag"
	"fmt"
	"os"
	"path"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"github.com/manishrjain/keys"
)

var (
	debug     = flag.Bool("debug", false, "Additional debug information if set.")
	in        = flag.String("in", "", "Path of the SPED ECD text export to convert.")
	output    = flag.String("out", "", "File to write the converted export to. Defaults to <in>.depara.txt.")
	chartFile = flag.String("chart", "", "Target chart of accounts (.xlsx or .csv)."+
		" If not given, the default chart registered with -save-default is used.")
	saveDefault = flag.Bool("save-default", false, "Register the -chart file as the default target chart and exit.")
	threshold   = flag.Int("threshold", 70, "Similarity score (0-100) at or above which a suggestion is preselected.")
	matcher     = flag.String("matcher", "fuzzy", "Account-name matcher: fuzzy or bayes.")
	auto        = flag.Bool("auto", false, "Pre-fill the mapping with suggestions at or above the threshold.")
	aiReview    = flag.Bool("ai-review", false, "Ask Claude for a second opinion on accounts below the threshold.")
	batchSize   = flag.Int("batch-size", 50, "Number of accounts to send per AI review request.")
	configDir   = flag.String("conf", os.Getenv("HOME")+"/.depara",
		"Config directory to store the default chart, shortcuts and config.yaml in.")
	shortcuts = flag.String("short", "shortcuts.yaml", "Name of shortcuts file.")

	short *keys.Shortcuts
)

type configs struct {
	Threshold int    `yaml:"threshold"`
	Matcher   string `yaml:"matcher"`
	AI        struct {
		Enabled bool   `yaml:"enabled"`
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
	} `yaml:"ai"`
}

// applyConfigs reads config.yaml from the config dir. Config values fill in
// flags the user did not pass explicitly; explicit flags always win.
func applyConfigs() configs {
	var c configs
	configPath := path.Join(*configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return c
	}
	checkf(yaml.Unmarshal(data, &c), "Unable to unmarshal yaml config at %v", configPath)

	passed := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { passed[f.Name] = true })
	if c.Threshold > 0 && !passed["threshold"] {
		*threshold = c.Threshold
	}
	if len(c.Matcher) > 0 && !passed["matcher"] {
		*matcher = c.Matcher
	}
	if c.AI.Enabled && !passed["ai-review"] {
		*aiReview = true
	}
	return c
}

func main() {
	flag.Parse()
	defer saneMode()
	singleCharMode()

	checkf(os.MkdirAll(*configDir, 0o755), "Unable to create directory: %v", *configDir)
	conf := applyConfigs()
	assertf(*threshold >= 0 && *threshold <= 100, "Threshold must be within 0-100, got %v", *threshold)

	keyfile := path.Join(*configDir, *shortcuts)
	short = keys.ParseConfig(keyfile)
	defer short.Persist(keyfile)

	db, err := openChartDB(*configDir)
	checkf(err, "Unable to open chart db in %v", *configDir)
	defer db.Close()

	var chart []ChartEntry
	if len(*chartFile) > 0 {
		rows, err := readChartRows(*chartFile)
		checkf(err, "Unable to read target chart: %v", *chartFile)
		chart, err = loadChart(rows)
		checkf(err, "Target chart %v is unusable", *chartFile)
		if *saveDefault {
			checkf(saveDefaultChart(db, chart), "Unable to save default chart")
			fmt.Printf("Default chart saved: %d accounts.\n", len(chart))
			return
		}
	} else {
		if *saveDefault {
			oerr("-save-default needs a chart file via -chart")
			return
		}
		chart, err = loadDefaultChart(db)
		checkf(err, "No target chart available")
	}
	if len(chart) == 0 {
		oerr("The target chart has no accounts")
		return
	}

	if len(*in) == 0 {
		oerr("Please specify the SPED export with -in")
		return
	}
	raw, err := os.ReadFile(*in)
	checkf(err, "Unable to read file: %v", *in)
	lines := readLines(raw)
	if len(lines) == 0 {
		oerr("Could not decode " + *in + ". Waiting for a readable export (cp1252, utf-8 or latin-1).")
		return
	}

	used := findUsedAccounts(lines)
	accounts := discoverAccounts(lines, used, nil)
	if len(accounts) == 0 {
		fmt.Println("No accounts with movement found in the export. Nothing to map.")
		return
	}
	fmt.Printf("%d lines read, %d journal account references, %d distinct accounts with movement.\n",
		len(lines), len(used), len(accounts))

	var oracle Oracle
	switch *matcher {
	case "fuzzy":
		oracle = fuzzyOracle{}
	case "bayes":
		oracle = newBayesOracle(chart)
	default:
		oerr("Unknown matcher: " + *matcher)
		return
	}

	sugg := make(map[string]Suggestion, len(accounts))
	for _, acc := range accounts {
		sugg[acc.ID] = suggest(acc, chart, oracle)
		if *debug {
			s := sugg[acc.ID]
			fmt.Printf("[Suggest] %v -> %v (%d)\n", acc.Name, s.Entry.Name, s.Score)
		}
	}

	buildChartShortcuts(short, chart)
	mapping := NewMapping()
	r := newReviewer(accounts, chart, sugg, mapping, oracle, *threshold, short)
	if *auto {
		r.autoAccept()
	}

	if *aiReview {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if len(conf.AI.APIKey) > 0 {
			apiKey = conf.AI.APIKey
		}
		decisions, err := reviewLowConfidence(accounts, sugg, chart, *threshold, apiKey, conf.AI.Model, *batchSize)
		checkf(err, "AI review failed")
		r.ai = decisions
	}

	if !r.run() {
		fmt.Println("Quit without writing output.")
		return
	}
	if pending := mapping.Pending(accounts); pending > 0 {
		// The review loop gates on completeness; this is the last line of
		// defense before touching the output file.
		oerr(fmt.Sprintf("%d accounts still unmapped; the converted export was not written", pending))
		return
	}

	converted, substituted := rewriteLines(lines, mapping)
	outPath := *output
	if len(outPath) == 0 {
		outPath = *in + ".depara.txt"
	}
	checkf(os.WriteFile(outPath, []byte(strings.Join(converted, "\n")+"\n"), 0o644),
		"Unable to write output file: %v", outPath)
	fmt.Printf("Converted export written to %s (%d of %d lines substituted).\n",
		outPath, substituted, len(converted))
}

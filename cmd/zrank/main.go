// Command zrank is the CLI facade for the System-Z non-monotonic
// ranking engine (pkg/zrank): load a knowledge base, search for
// tolerance pairs, build a ranking, answer acceptance queries, and
// export a ranking to CSV. It follows the teacher's cmd/*/main.go
// texture: a flag.FlagSet per subcommand, log.New(os.Stderr, "", 0) for
// diagnostics, plain fmt/encoding-json output otherwise.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cognicore/zrank/pkg/zrank"
	"github.com/cognicore/zrank/pkg/zrank/config"
	"github.com/cognicore/zrank/pkg/zrank/csvio"
	"github.com/cognicore/zrank/pkg/zrank/explain"
	"github.com/cognicore/zrank/pkg/zrank/internalerr"
	"github.com/cognicore/zrank/pkg/zrank/logic"
	"github.com/cognicore/zrank/pkg/zrank/rank"
	"github.com/cognicore/zrank/pkg/zrank/store"
	"github.com/cognicore/zrank/pkg/zrank/store/memstore"
	"github.com/cognicore/zrank/pkg/zrank/store/sqlite"
	"github.com/cognicore/zrank/pkg/zrank/tolerance"
)

var diag = log.New(os.Stderr, "", 0)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "load":
		err = runLoad(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "rank":
		err = runRank(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	case "export-csv":
		err = runExportCSV(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err == nil {
		return
	}
	diag.Printf("zrank: %v", err)
	os.Exit(exitCode(err))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: zrank <load|search|rank|query|export-csv> [flags]")
}

// exitCode maps the error taxonomy of spec.md §7 to a process exit
// status: 0 only for success, 1 for ErrInput, 2 for ErrCapacity, 3 for
// ErrCancelled and 70 for ErrInternalInvariant, so a caller can tell
// "bad input" apart from a bug. Any other error also maps to 1.
func exitCode(err error) int {
	switch {
	case errors.Is(err, internalerr.ErrInput):
		return 1
	case errors.Is(err, internalerr.ErrCapacity):
		return 2
	case errors.Is(err, internalerr.ErrCancelled):
		return 3
	case errors.Is(err, internalerr.ErrInternalInvariant):
		return 70
	default:
		return 1
	}
}

func readKBFile(path string) (*logic.KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", internalerr.ErrInput, path, err)
	}
	return zrank.LoadKB(string(data))
}

func loadProfile(path string) config.Profile {
	if path == "" {
		return config.Default()
	}
	p, err := config.Load(path)
	if err != nil {
		diag.Printf("zrank: %v; falling back to defaults", err)
		return config.Default()
	}
	return p
}

func openStore(ctx context.Context, sqlitePath string) (store.Store, error) {
	if sqlitePath == "" {
		return memstore.New(), nil
	}
	return sqlite.Open(ctx, sqlitePath)
}

func parseStrategy(name string) (tolerance.Strategy, error) {
	switch name {
	case "brute":
		return tolerance.StrategyBruteForce, nil
	case "search_all":
		return tolerance.StrategyBacktrackAll, nil
	case "search_min":
		return tolerance.StrategyBacktrackMinimal, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q (want brute, search_all, or search_min)", internalerr.ErrInput, name)
	}
}

// cacheKeyFor derives a store cache key from a knowledge base's text and
// the requested strategy, so a world set and ranking computed for one
// invocation can be reused by a later one over the same KB text.
func cacheKeyFor(kbText, strategy string) string {
	return strategy + ":" + hashText(kbText)
}

// hashText is an FNV-1a hash of the KB text, used only to form a store
// cache key — not a correctness-bearing hash (unlike logic.Hash), so a
// plain non-cryptographic sum is enough.
func hashText(s string) string {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return fmt.Sprintf("%016x", h)
}

// ---- load ----

func runLoad(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	kbPath := fs.String("kb", "", "path to a knowledge base text file (required)")
	fs.Parse(args)
	if *kbPath == "" {
		return fmt.Errorf("%w: -kb is required", internalerr.ErrInput)
	}

	kb, err := readKBFile(*kbPath)
	if err != nil {
		return err
	}

	fmt.Printf("predicates: %d, domain: %d, conditionals: %d, facts: %d, interpretables: %d\n",
		len(kb.Predicates), len(kb.Domain), len(kb.Conditionals), len(kb.Facts), len(kb.Interpretables()))
	return nil
}

// ---- search ----

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	kbPath := fs.String("kb", "", "path to a knowledge base text file (required)")
	configPath := fs.String("config", "", "path to a YAML session profile")
	strategyFlag := fs.String("strategy", "", "brute, search_all, or search_min (default from config)")
	fs.Parse(args)
	if *kbPath == "" {
		return fmt.Errorf("%w: -kb is required", internalerr.ErrInput)
	}

	profile := loadProfile(*configPath)
	strategyName := profile.Strategy
	if *strategyFlag != "" {
		strategyName = *strategyFlag
	}
	strategy, err := parseStrategy(strategyName)
	if err != nil {
		return err
	}

	kb, err := readKBFile(*kbPath)
	if err != nil {
		return err
	}
	ws, err := zrank.BuildWorlds(kb, profile.Limits())
	if err != nil {
		return err
	}

	sink := progressSink()
	results, err := zrank.SearchTolerancePairs(kb, ws, strategy, sink)
	if err != nil {
		return err
	}

	type pairOut struct {
		Subsets int `json:"subsets"`
		Pair    string `json:"pair"`
	}
	out := make([]pairOut, len(results))
	for i, r := range results {
		out[i] = pairOut{Subsets: len(r.Pair.Subsets), Pair: r.Pair.CanonicalKey()}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func progressSink() tolerance.ProgressSink {
	return func(p tolerance.Progress) bool {
		return true
	}
}

// rankString renders a κ value the way csvio does: "inf" for
// rank.Infinity, the decimal value otherwise.
func rankString(k uint64) string {
	if k == rank.Infinity {
		return "inf"
	}
	return fmt.Sprintf("%d", k)
}

// ---- rank ----

func runRank(args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	kbPath := fs.String("kb", "", "path to a knowledge base text file (required)")
	configPath := fs.String("config", "", "path to a YAML session profile")
	strategyFlag := fs.String("strategy", "", "brute, search_all, or search_min (default from config)")
	sqlitePath := fs.String("store", "", "optional sqlite path for caching world sets and rankings")
	csvPath := fs.String("out", "", "optional CSV output path (default: stdout)")
	fs.Parse(args)
	if *kbPath == "" {
		return fmt.Errorf("%w: -kb is required", internalerr.ErrInput)
	}

	profile := loadProfile(*configPath)
	strategyName := profile.Strategy
	if *strategyFlag != "" {
		strategyName = *strategyFlag
	}
	strategy, err := parseStrategy(strategyName)
	if err != nil {
		return err
	}

	kbText, err := os.ReadFile(*kbPath)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", internalerr.ErrInput, *kbPath, err)
	}
	kb, err := zrank.LoadKB(string(kbText))
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, err := openStore(ctx, *sqlitePath)
	if err != nil {
		return err
	}
	defer st.Close()

	cacheKey := cacheKeyFor(string(kbText), strategyName)

	ws, ok, err := st.LoadWorldSet(ctx, cacheKey, *kb)
	if err != nil {
		return err
	}
	if !ok {
		ws, err = zrank.BuildWorlds(kb, profile.Limits())
		if err != nil {
			return err
		}
		if err := st.SaveWorldSet(ctx, cacheKey, ws); err != nil {
			diag.Printf("zrank: caching world set: %v", err)
		}
	}

	rk, ok, err := st.LoadRanking(ctx, cacheKey, ws)
	if err != nil {
		return err
	}
	if !ok {
		results, err := zrank.SearchTolerancePairs(kb, ws, strategy, progressSink())
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return fmt.Errorf("knowledge base is inconsistent: no valid tolerance pair")
		}
		rk, err = zrank.BuildRanking(kb, ws, results[0].Pair)
		if err != nil {
			return err
		}
		if err := st.SaveRanking(ctx, cacheKey, rk); err != nil {
			diag.Printf("zrank: caching ranking: %v", err)
		}
	}

	out := os.Stdout
	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return csvio.Export(f, rk, profile.CSV.InfinitySentinel)
	}
	return csvio.Export(out, rk, profile.CSV.InfinitySentinel)
}

// ---- query ----

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	kbPath := fs.String("kb", "", "path to a knowledge base text file (required)")
	configPath := fs.String("config", "", "path to a YAML session profile")
	strategyFlag := fs.String("strategy", "", "brute, search_all, or search_min (default from config)")
	queryText := fs.String("q", "", "query: a bare formula or a (B|A) conditional (required)")
	explainFlag := fs.Bool("explain", false, "print the evaluation tree alongside the verdict")
	rankFlag := fs.Bool("rank", false, "also print κ(query) alongside the acceptance verdict")
	fs.Parse(args)
	if *kbPath == "" || *queryText == "" {
		return fmt.Errorf("%w: -kb and -q are required", internalerr.ErrInput)
	}

	profile := loadProfile(*configPath)
	strategyName := profile.Strategy
	if *strategyFlag != "" {
		strategyName = *strategyFlag
	}
	strategy, err := parseStrategy(strategyName)
	if err != nil {
		return err
	}

	kb, err := readKBFile(*kbPath)
	if err != nil {
		return err
	}
	q, err := zrank.ParseQuery(*queryText, kb)
	if err != nil {
		return err
	}

	ws, err := zrank.BuildWorlds(kb, profile.Limits())
	if err != nil {
		return err
	}
	results, err := zrank.SearchTolerancePairs(kb, ws, strategy, progressSink())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("knowledge base is inconsistent: no valid tolerance pair")
	}
	rk, err := zrank.BuildRanking(kb, ws, results[0].Pair)
	if err != nil {
		return err
	}

	var tree *explain.Tree
	useExplain := *explainFlag || profile.Explain.Enabled
	if useExplain {
		tree = explain.New()
	}
	accepted := zrank.Accepts(rk, kb, q, tree)

	fmt.Printf("%s: %v\n", q, accepted)
	if *rankFlag {
		fmt.Printf("κ(%s) = %s\n", q, rankString(zrank.Rank(rk, kb, q, tree)))
	}
	if useExplain {
		printNode(tree.Root(), 0)
	}
	return nil
}

func printNode(n *explain.Node, depth int) {
	if n == nil {
		return
	}
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	fmt.Println(n.Text)
	for _, c := range n.Children {
		printNode(c, depth+1)
	}
}

// ---- export-csv ----

func runExportCSV(args []string) error {
	fs := flag.NewFlagSet("export-csv", flag.ExitOnError)
	kbPath := fs.String("kb", "", "path to a knowledge base text file (required)")
	configPath := fs.String("config", "", "path to a YAML session profile")
	strategyFlag := fs.String("strategy", "", "brute, search_all, or search_min (default from config)")
	outPath := fs.String("out", "", "CSV output path (required)")
	fs.Parse(args)
	if *kbPath == "" || *outPath == "" {
		return fmt.Errorf("%w: -kb and -out are required", internalerr.ErrInput)
	}

	profile := loadProfile(*configPath)
	strategyName := profile.Strategy
	if *strategyFlag != "" {
		strategyName = *strategyFlag
	}
	strategy, err := parseStrategy(strategyName)
	if err != nil {
		return err
	}

	kb, err := readKBFile(*kbPath)
	if err != nil {
		return err
	}
	ws, err := zrank.BuildWorlds(kb, profile.Limits())
	if err != nil {
		return err
	}
	results, err := zrank.SearchTolerancePairs(kb, ws, strategy, progressSink())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("knowledge base is inconsistent: no valid tolerance pair")
	}
	rk, err := zrank.BuildRanking(kb, ws, results[0].Pair)
	if err != nil {
		return err
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return csvio.Export(f, rk, profile.CSV.InfinitySentinel)
}

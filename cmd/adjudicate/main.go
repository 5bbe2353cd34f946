package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adjudex/tribunal/internal/contract"
	"github.com/adjudex/tribunal/internal/domain"
	"github.com/adjudex/tribunal/internal/engine"
	"github.com/adjudex/tribunal/internal/service"
	"go.uber.org/zap"
)

// adjudicate runs one claim through the tribunal from the command line,
// without a database. Useful for contract and beam authoring.
func main() {
	contractPath := flag.String("contract", "", "contract file (default: built-in contract)")
	beamsDir := flag.String("beams", "beams", "directory of beam graph files")
	timeout := flag.Duration("timeout", 500*time.Millisecond, "per-claim deadline")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: adjudicate [flags] <claim text>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	claimText := strings.Join(flag.Args(), " ")

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	c := contract.Default()
	if *contractPath != "" {
		loaded, err := contract.Load(*contractPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "adjudicate: %v\n", err)
			os.Exit(1)
		}
		c = loaded
	}

	graphs, err := engine.LoadGraphDir(*beamsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adjudicate: %v\n", err)
		os.Exit(1)
	}

	byID := make(map[string]*engine.Graph, len(graphs))
	for _, g := range graphs {
		byID[g.ID] = g
	}

	eval := engine.NewEvaluator(c, logger)
	modules := make([]domain.Reasoner, 0, len(c.Order))
	for _, id := range c.Order {
		g, ok := byID[id]
		if !ok {
			fmt.Fprintf(os.Stderr, "adjudicate: no beam graph for module %s in %s\n", id, *beamsDir)
			os.Exit(1)
		}
		modules = append(modules, engine.NewGraphReasoner(g, eval))
	}

	svc := service.NewAdjudicationService(c, modules, logger)
	svc.SetTimeout(*timeout)

	verdict, err := svc.Adjudicate(context.Background(), domain.Claim{Text: claimText})
	if err != nil {
		fmt.Fprintf(os.Stderr, "adjudicate: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(verdict); err != nil {
		fmt.Fprintf(os.Stderr, "adjudicate: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"schedrisk-mcp/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "chain", "Scenario to generate: chain, parallel, cyclic, random")
	outDir := flag.String("out", "./schedules", "Output directory for mock schedule files")
	count := flag.Int("count", 20, "Number of tasks (random scenario only)")
	seed := flag.Int64("seed", 42, "Random seed (random scenario only)")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Seed:     *seed,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Count: %d) to %s...\n", cfg.Scenario, cfg.Count, *outDir)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Printf("Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	sched, tasks, budget := engine.Generate(cfg)
	if err := engine.Save(*outDir, sched, tasks, budget); err != nil {
		fmt.Printf("Failed to save mock schedule: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}

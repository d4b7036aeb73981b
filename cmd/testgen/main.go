package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"testgen"
)

func main() {
	var (
		bankFile   = flag.String("bank", "", "Item bank file, YAML or SQLite (required)")
		configFile = flag.String("config", "", "Assembly config file, YAML (required)")
		output     = flag.String("output", "test", "Output base name, without extension")
		title      = flag.String("title", "", "Test title (default: title from config)")
		maxTries   = flag.Int("max-tries", 0, "Maximum assembly attempts (default: config value, else 10)")
		seed       = flag.Int64("seed", 0, "Random seed for reproducible assembly (0 = time-based)")
		backtrack  = flag.Bool("backtrack", false, "Use per-criterion backtracking instead of full restarts")
		skipPDF    = flag.Bool("skip-pdf", false, "Write .tex files but do not run pdflatex")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	testgen.SetVerbose(*verbose)

	if *bankFile == "" {
		log.Fatal("Item bank is required. Use -bank flag.")
	}
	if *configFile == "" {
		log.Fatal("Config is required. Use -config flag.")
	}

	var sampler *testgen.Sampler
	if *seed != 0 {
		sampler = testgen.NewSampler(rand.New(rand.NewSource(*seed)))
	} else {
		sampler = testgen.NewSampler(nil)
	}

	maker := testgen.NewTestMaker(sampler)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	test, err := maker.MakeTest(ctx, testgen.MakeRequest{
		BankPath:   *bankFile,
		ConfigPath: *configFile,
		OutBase:    *output,
		Title:      *title,
		MaxTries:   *maxTries,
		Backtrack:  *backtrack,
		SkipPDF:    *skipPDF,
	})
	if err != nil {
		log.Fatalf("Failed to assemble test: %v", err)
	}

	log.Printf("Assembled test %s (%q) with %d items", test.ID, test.Title, test.TotalItems)
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"testgen"
)

func main() {
	var (
		topic      = flag.String("topic", "", "Topic to draft items for (required)")
		tags       = flag.String("tags", "", "Comma-separated tag vocabulary for drafted items (required)")
		count      = flag.Int("count", 10, "Number of items to draft")
		source     = flag.String("source", "", "Source material to base items on")
		difficulty = flag.String("difficulty", "medium", "Difficulty level (easy, medium, hard)")
		bankFile   = flag.String("bank", "", "YAML bank file to append accepted items to")
		dbFile     = flag.String("db", "", "SQLite bank database to insert accepted items into")
		apiKey     = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	testgen.SetVerbose(*verbose)

	if *topic == "" {
		log.Fatal("Topic is required. Use -topic flag.")
	}
	if *tags == "" {
		log.Fatal("Tag vocabulary is required. Use -tags flag.")
	}
	if *bankFile == "" && *dbFile == "" {
		log.Fatal("An output bank is required. Use -bank or -db flag.")
	}

	// Get API key from flag or environment
	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
		if *apiKey == "" {
			log.Fatal("OpenAI API key is required. Use -api-key flag or set OPENAI_API_KEY environment variable.")
		}
	}

	tagList := make([]string, 0)
	for _, tag := range strings.Split(*tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tagList = append(tagList, tag)
		}
	}

	req := testgen.DraftRequest{
		Topic:          *topic,
		NumItems:       *count,
		Tags:           tagList,
		SourceMaterial: *source,
		Difficulty:     *difficulty,
	}

	builder := testgen.NewBankBuilder(*apiKey)

	// Seed the deduplicator with whatever is already in the bank
	existing := loadExisting(*bankFile, *dbFile)
	if len(existing) > 0 {
		builder.SeedExisting(existing)
		log.Printf("Seeded deduplicator with %d existing bank items", len(existing))
	}

	runID := time.Now().Format("20060102-150405")
	logger, err := testgen.NewDraftLogger(runID, req)
	if err != nil {
		log.Printf("Failed to create draft logger: %v", err)
		// Continue without logging rather than failing
	} else {
		builder.SetLogger(logger)
		defer logger.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	items, err := builder.BuildItems(ctx, req)
	if err != nil {
		log.Fatalf("Failed to draft items: %v", err)
	}

	if *bankFile != "" {
		if err := appendToYAMLBank(*bankFile, existing, items); err != nil {
			log.Fatalf("Failed to update bank %s: %v", *bankFile, err)
		}
		log.Printf("Appended %d items to %s", len(items), *bankFile)
	}

	if *dbFile != "" {
		if err := insertIntoBankDB(*dbFile, items); err != nil {
			log.Fatalf("Failed to update bank database %s: %v", *dbFile, err)
		}
		log.Printf("Inserted %d items into %s", len(items), *dbFile)
	}
}

func loadExisting(bankFile, dbFile string) []testgen.Item {
	path := bankFile
	if path == "" {
		path = dbFile
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	items, err := testgen.LoadBank(path)
	if err != nil {
		log.Printf("Could not load existing bank %s: %v", path, err)
		return nil
	}
	return items
}

func appendToYAMLBank(path string, existing, items []testgen.Item) error {
	return testgen.SaveItemBank(path, append(existing, items...))
}

func insertIntoBankDB(path string, items []testgen.Item) error {
	db, err := testgen.OpenBankDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CreateTables(); err != nil {
		return err
	}
	return db.ImportItems(items)
}

package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"testgen"
)

func main() {
	var (
		bankFile   = flag.String("bank", "", "YAML item bank file")
		dbFile     = flag.String("db", "", "SQLite item bank database")
		doImport   = flag.Bool("import", false, "Import the YAML bank into the database")
		exportFile = flag.String("export", "", "Export the database into the given YAML bank file")
		list       = flag.Bool("list", false, "List all items in the bank")
		census     = flag.Bool("tags", false, "Print a tag census of the bank")
	)

	flag.Parse()

	switch {
	case *doImport:
		if *bankFile == "" || *dbFile == "" {
			log.Fatal("Import requires both -bank and -db flags.")
		}
		importBank(*bankFile, *dbFile)
	case *exportFile != "":
		if *dbFile == "" {
			log.Fatal("Export requires the -db flag.")
		}
		exportBank(*dbFile, *exportFile)
	case *list:
		listItems(bankPath(*bankFile, *dbFile))
	case *census:
		tagCensus(bankPath(*bankFile, *dbFile))
	default:
		log.Fatal("Nothing to do. Use -import, -export, -list or -tags.")
	}
}

func bankPath(bankFile, dbFile string) string {
	if dbFile != "" {
		return dbFile
	}
	if bankFile != "" {
		return bankFile
	}
	log.Fatal("A bank is required. Use -bank or -db flag.")
	return ""
}

func importBank(bankFile, dbFile string) {
	items, err := testgen.LoadItemBank(bankFile)
	if err != nil {
		log.Fatalf("Failed to load bank: %v", err)
	}

	db, err := testgen.OpenBankDB(dbFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}
	if err := db.ImportItems(items); err != nil {
		log.Fatalf("Failed to import items: %v", err)
	}
	log.Printf("Imported %d items from %s into %s", len(items), bankFile, dbFile)
}

func exportBank(dbFile, exportFile string) {
	db, err := testgen.OpenBankDB(dbFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	items, err := db.GetItems()
	if err != nil {
		log.Fatalf("Failed to read items: %v", err)
	}
	if err := testgen.SaveItemBank(exportFile, items); err != nil {
		log.Fatalf("Failed to write bank: %v", err)
	}
	log.Printf("Exported %d items from %s into %s", len(items), dbFile, exportFile)
}

func listItems(path string) {
	items, err := testgen.LoadBank(path)
	if err != nil {
		log.Fatalf("Failed to load bank: %v", err)
	}

	for _, item := range items {
		fmt.Printf("%s  [%s]\n", item.ID, item.Tags)
		fmt.Printf("    %s\n", item.Text)
		for i, resp := range item.Responses {
			marker := " "
			if i == item.Correct {
				marker = "*"
			}
			fmt.Printf("   %s%d. %s\n", marker, i+1, resp)
		}
		fmt.Println()
	}
	fmt.Printf("%d items\n", len(items))
}

func tagCensus(path string) {
	items, err := testgen.LoadBank(path)
	if err != nil {
		log.Fatalf("Failed to load bank: %v", err)
	}

	counts := make(map[string]int)
	for _, item := range items {
		for _, tag := range item.Tags.Sorted() {
			counts[tag]++
		}
	}

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tag := range tags {
		fmt.Printf("%-24s %d\n", tag, counts[tag])
	}
	fmt.Printf("%d items, %d tags\n", len(items), len(tags))
}

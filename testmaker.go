package testgen

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestMaker orchestrates one assembly run: load the bank and config,
// sample the items, render both document variants and compile them. It
// adds nothing of its own; loading, sampling and rendering failures
// propagate unchanged, and no artifact is written when sampling fails.
type TestMaker struct {
	sampler  *Sampler
	compiler *PDFCompiler
}

// NewTestMaker creates a test maker. A nil sampler gets a time-seeded one.
func NewTestMaker(sampler *Sampler) *TestMaker {
	if sampler == nil {
		sampler = NewSampler(nil)
	}
	return &TestMaker{
		sampler:  sampler,
		compiler: NewPDFCompiler(),
	}
}

// MakeRequest describes one assembly run
type MakeRequest struct {
	BankPath   string // YAML bank file or SQLite bank database
	ConfigPath string
	OutBase    string // output base name, without extension
	Title      string // overrides the config title when set
	MaxTries   int    // overrides the config attempt budget when > 0
	Backtrack  bool   // use the backtracking strategy instead of full restarts
	SkipPDF    bool   // write .tex files but skip the LaTeX engine
}

// MakeTest assembles a test and writes its artifacts: one document
// without and one with the answer key.
func (tm *TestMaker) MakeTest(ctx context.Context, req MakeRequest) (*Test, error) {
	pool, err := LoadBank(req.BankPath)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(req.ConfigPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d items and %d criteria", len(pool), len(cfg.Criteria))

	test, err := tm.Assemble(pool, cfg, req.Title, req.MaxTries, req.Backtrack)
	if err != nil {
		return nil, err
	}

	outBase := req.OutBase
	if outBase == "" {
		outBase = "test"
	}
	for _, showKey := range []bool{false, true} {
		if err := tm.writeArtifact(ctx, test, outBase, showKey, req.SkipPDF); err != nil {
			return nil, err
		}
	}
	return test, nil
}

// Assemble samples a test from an in-memory pool without touching disk.
func (tm *TestMaker) Assemble(pool []Item, cfg *Config, title string, maxTries int, backtrack bool) (*Test, error) {
	if title == "" {
		title = cfg.Title
	}
	if maxTries <= 0 {
		maxTries = cfg.MaxTries
	}

	var selected []Item
	var err error
	if backtrack {
		selected, err = tm.sampler.SelectBacktracking(pool, cfg.Criteria, maxTries)
	} else {
		selected, err = tm.sampler.Select(pool, cfg.Criteria, maxTries)
	}
	if err != nil {
		return nil, err
	}

	return &Test{
		ID:         generateTestID(),
		Title:      title,
		Items:      selected,
		CreatedAt:  time.Now(),
		TotalItems: len(selected),
	}, nil
}

func (tm *TestMaker) writeArtifact(ctx context.Context, test *Test, outBase string, showKey, skipPDF bool) error {
	texPath := outBase + ".tex"
	if showKey {
		texPath = outBase + "_and_key.tex"
	}
	doc, err := RenderDocument(test.Items, test.Title, showKey)
	if err != nil {
		return err
	}
	if err := os.WriteFile(texPath, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", texPath, err)
	}
	log.Printf("Wrote %s", texPath)
	if skipPDF {
		return nil
	}
	return tm.compiler.Compile(ctx, texPath)
}

// LoadBank loads an item pool from either a YAML bank file or a SQLite
// bank database, dispatching on the file extension.
func LoadBank(path string) ([]Item, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		db, err := OpenBankDB(path)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.GetItems()
	default:
		return LoadItemBank(path)
	}
}

func generateTestID() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 12)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

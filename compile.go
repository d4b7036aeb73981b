package testgen

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// PDFCompiler shells out to a LaTeX engine to turn rendered .tex files
// into PDFs.
type PDFCompiler struct {
	Command string
	run     func(ctx context.Context, name string, args ...string) error
}

// NewPDFCompiler creates a compiler using pdflatex.
func NewPDFCompiler() *PDFCompiler {
	return &PDFCompiler{
		Command: "pdflatex",
		run:     runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Compile runs the LaTeX engine on the given .tex file, blocking until
// the external process completes.
func (c *PDFCompiler) Compile(ctx context.Context, texPath string) error {
	VerboseLog("Compiling %s with %s", texPath, c.Command)
	if err := c.run(ctx, c.Command, "-interaction=nonstopmode", texPath); err != nil {
		return fmt.Errorf("failed to compile %s: %w", texPath, err)
	}
	return nil
}

package testgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileInvokesEngine(t *testing.T) {
	var gotName string
	var gotArgs []string
	compiler := &PDFCompiler{
		Command: "pdflatex",
		run: func(ctx context.Context, name string, args ...string) error {
			gotName = name
			gotArgs = args
			return nil
		},
	}

	require.NoError(t, compiler.Compile(context.Background(), "midterm.tex"))
	assert.Equal(t, "pdflatex", gotName)
	assert.Contains(t, gotArgs, "midterm.tex")
}

func TestCompilePropagatesFailure(t *testing.T) {
	boom := errors.New("missing package")
	compiler := &PDFCompiler{
		Command: "pdflatex",
		run: func(ctx context.Context, name string, args ...string) error {
			return boom
		},
	}

	err := compiler.Compile(context.Background(), "midterm.tex")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

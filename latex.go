package testgen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// DefaultTitle is used when neither the config nor the caller names the test.
const DefaultTitle = "Generated Test"

// latexTemplate is the document skeleton for the exam document class.
// Class options (notably [answers] for the key variant) are injected
// through DocclassOpts, the rendered item list through Questions. Item
// text and responses are treated as raw LaTeX.
var latexTemplate = template.Must(template.New("document").Parse(`\documentclass{{.DocclassOpts}}{exam}

\begin{document}
    \begin{center}
        {\large \textbf{ {{- .Title -}} }}
    \end{center}

    \vspace{0.2in}
    \makebox[\textwidth]{Name:\enspace\hrulefill}
    \vspace{.4in}

    \begin{center}
        \fbox{\fbox{\parbox{5.5in}{\centering
            Answer the questions in the spaces provided on the
            question sheets.  If you run out of room for an answer,
            continue on the back of the page.}}}
    \end{center}

    \vspace{.3in}

    \begin{questions}
{{.Questions}}
    \end{questions}
\end{document}
`))

// LaTeX returns the exam-class markup for one item: the question followed
// by a choices environment with the correct response marked.
func (it Item) LaTeX() string {
	responses := make([]string, 0, len(it.Responses))
	for i, resp := range it.Responses {
		if i == it.Correct {
			responses = append(responses, fmt.Sprintf("\\CorrectChoice %s", resp))
		} else {
			responses = append(responses, fmt.Sprintf("\\choice %s", resp))
		}
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\\question %s\n", it.Text))
	sb.WriteString("\\begin{choices}\n")
	sb.WriteString(strings.Join(responses, "\n"))
	sb.WriteString("\n\\end{choices}\n")
	return sb.String()
}

// RenderDocument renders the full LaTeX source for a selected item list.
// With showKey the exam class gets the answers option, which prints the
// marked correct choices.
func RenderDocument(items []Item, title string, showKey bool) (string, error) {
	if title == "" {
		title = DefaultTitle
	}
	opts := ""
	if showKey {
		opts = "[answers]"
	}
	rendered := make([]string, 0, len(items))
	for _, item := range items {
		rendered = append(rendered, item.LaTeX())
	}
	var buf bytes.Buffer
	err := latexTemplate.Execute(&buf, map[string]string{
		"DocclassOpts": opts,
		"Title":        title,
		"Questions":    strings.Join(rendered, "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}

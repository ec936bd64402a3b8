// Package wizard collects a benchmark request interactively.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
)

// GradeInput holds everything collected by the grade wizard.
type GradeInput struct {
	Topic  string
	Essay  string
	Models []models.ModelID
}

// RunGradeWizard runs an interactive huh form asking for the essay topic,
// the essay text and the models to benchmark. essay pre-populates the text
// field, e.g. when the essay was read from a file.
func RunGradeWizard(in io.Reader, out io.Writer, essay string) (*GradeInput, error) {
	var (
		topic    string
		selected []string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Topic").
				Description("The writing prompt the essay answers (optional)").
				Placeholder("Some people think technology makes life more complex...").
				Value(&topic),
			huh.NewText().
				Title("Essay").
				Description("Paste the full essay text").
				Value(&essay).
				Validate(validateEssay),
			huh.NewMultiSelect[string]().
				Title("Models").
				Description("Models to benchmark; none selected means all").
				Options(modelOptions()...).
				Value(&selected),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return newGradeInput(topic, essay, selected)
}

func modelOptions() []huh.Option[string] {
	specs := models.Catalog()
	opts := make([]huh.Option[string], 0, len(specs))
	for _, spec := range specs {
		label := fmt.Sprintf("%s (%s)", spec.DisplayName, spec.Architecture)
		opts = append(opts, huh.NewOption(label, string(spec.ID)))
	}
	return opts
}

func validateEssay(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("essay text is required")
	}
	return nil
}

func newGradeInput(topic, essay string, selected []string) (*GradeInput, error) {
	if err := validateEssay(essay); err != nil {
		return nil, err
	}
	ids := make([]models.ModelID, 0, len(selected))
	for _, s := range selected {
		if s = strings.TrimSpace(s); s != "" {
			ids = append(ids, models.ModelID(s))
		}
	}
	return &GradeInput{
		Topic:  strings.TrimSpace(topic),
		Essay:  essay,
		Models: ids,
	}, nil
}

package orchestration

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
)

// ResolveModels expands the requested model selectors into model ids, in
// request order and without duplicates. A selector containing glob
// metacharacters is matched against known; any other selector is taken as a
// literal id, so ids the catalog does not know still reach the service. An
// empty request selects every known model.
func ResolveModels(selectors []string, known []models.ModelID) ([]models.ModelID, error) {
	if len(selectors) == 0 {
		return append([]models.ModelID(nil), known...), nil
	}

	seen := make(map[models.ModelID]bool)
	var out []models.ModelID
	add := func(id models.ModelID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, s := range selectors {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.ContainsAny(s, "*?[") {
			add(models.ModelID(s))
			continue
		}
		matched := false
		for _, id := range known {
			ok, err := filepath.Match(s, string(id))
			if err != nil {
				return nil, fmt.Errorf("invalid model pattern %q: %w", s, err)
			}
			if ok {
				matched = true
				add(id)
			}
		}
		if !matched {
			return nil, fmt.Errorf("model pattern %q matches no known model", s)
		}
	}
	if len(out) == 0 {
		return nil, &models.ValidationError{Field: "models", Err: fmt.Errorf("no models selected")}
	}
	return out, nil
}

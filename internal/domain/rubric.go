package domain

import "fmt"

// Rubric is the versioned scoring definition for one project. It is loaded
// once at startup and read-only afterwards; the engine never assumes a total
// of 100 points, it always re-derives totals by summation.
type Rubric struct {
	ID                   string     `yaml:"id" json:"rubric_id"`
	Project              string     `yaml:"project" json:"project"`
	Version              string     `yaml:"version" json:"version"`
	Title                string     `yaml:"title" json:"title"`
	TotalPoints          int        `yaml:"total_points" json:"total_points"`
	PassThresholdPercent float64    `yaml:"pass_threshold_percent" json:"pass_threshold_percent"`
	Categories           []Category `yaml:"categories" json:"categories"`
}

type Category struct {
	Name       string      `yaml:"name" json:"name"`
	MaxPoints  int         `yaml:"max_points" json:"max_points"`
	Parameters []Parameter `yaml:"parameters" json:"parameters"`
}

type Parameter struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	MaxPoints   int    `yaml:"max_points" json:"max_points"`
	// Fatal parameters zero the whole call score when they fail.
	Fatal    bool `yaml:"fatal" json:"fatal"`
	AllowsNA bool `yaml:"allows_na" json:"allows_na"`
	// KnowledgeKeys names the knowledge-base facts claims under this
	// parameter must be checked against. Empty for behavioral parameters.
	KnowledgeKeys []string `yaml:"knowledge_keys" json:"knowledge_keys,omitempty"`
}

// Validate checks the load-time invariants: parameter ids unique across the
// rubric, each category's max equals the sum of its parameters, the rubric
// total equals the sum of its categories.
func (r *Rubric) Validate() error {
	if len(r.Categories) == 0 {
		return NewSchemaError(r.ID, "rubric has no categories")
	}

	seen := make(map[string]bool)
	catSum := 0

	for _, cat := range r.Categories {
		paramSum := 0
		for _, p := range cat.Parameters {
			if p.ID == "" {
				return NewSchemaError(r.ID, "category %q contains a parameter with empty id", cat.Name)
			}
			if seen[p.ID] {
				return NewSchemaError(r.ID, "duplicate parameter id %q", p.ID)
			}
			seen[p.ID] = true
			if p.MaxPoints < 0 {
				return NewSchemaError(r.ID, "parameter %q has negative max_points", p.ID)
			}
			paramSum += p.MaxPoints
		}
		if paramSum != cat.MaxPoints {
			return NewSchemaError(r.ID, "category %q declares %d points but parameters sum to %d",
				cat.Name, cat.MaxPoints, paramSum)
		}
		catSum += cat.MaxPoints
	}

	if catSum != r.TotalPoints {
		return NewSchemaError(r.ID, "rubric declares %d total points but categories sum to %d",
			r.TotalPoints, catSum)
	}

	return nil
}

// Parameters returns every parameter in category order.
func (r *Rubric) Parameters() []Parameter {
	var params []Parameter
	for _, cat := range r.Categories {
		params = append(params, cat.Parameters...)
	}
	return params
}

// ParameterByID returns the parameter with the given id, or nil.
func (r *Rubric) ParameterByID(id string) *Parameter {
	for ci := range r.Categories {
		for pi := range r.Categories[ci].Parameters {
			if r.Categories[ci].Parameters[pi].ID == id {
				return &r.Categories[ci].Parameters[pi]
			}
		}
	}
	return nil
}

// FatalParameterIDs returns the ids of all fatal parameters.
func (r *Rubric) FatalParameterIDs() []string {
	var ids []string
	for _, p := range r.Parameters() {
		if p.Fatal {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Key identifies a rubric by project and version.
func (r *Rubric) Key() string {
	return fmt.Sprintf("%s/%s", r.Project, r.Version)
}

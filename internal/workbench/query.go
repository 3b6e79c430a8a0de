package workbench

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// QueryEnv is the environment a query expression is evaluated against.
type QueryEnv struct {
	ID          string   `expr:"id"`
	Title       string   `expr:"title"`
	Description string   `expr:"description"`
	Status      string   `expr:"status"`
	PhaseID     string   `expr:"phaseId"`
	Phase       string   `expr:"phase"`
	Tags        []string `expr:"tags"`
	Order       int      `expr:"order"`
	CreatedAt   int64    `expr:"createdAt"`
	UpdatedAt   int64    `expr:"updatedAt"`
}

// Query is a compiled boolean expression over a feature, for example
//
//	status == "blocked" || ("api" in tags && phase == "Foundation")
type Query struct {
	source  string
	program *vm.Program
}

// CompileQuery compiles a query expression. The expression must evaluate to
// a boolean.
func CompileQuery(source string) (*Query, error) {
	program, err := expr.Compile(source, expr.Env(QueryEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", source, err)
	}
	return &Query{source: source, program: program}, nil
}

// Match evaluates the query for a feature. phases resolves the phase name.
func (q *Query) Match(f Feature, phases map[string]Phase) (bool, error) {
	env := QueryEnv{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Status:      string(f.Status),
		PhaseID:     f.PhaseID,
		Phase:       phases[f.PhaseID].Name,
		Tags:        f.Tags,
		Order:       f.Order,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if env.Tags == nil {
		env.Tags = []string{}
	}
	out, err := expr.Run(q.program, env)
	if err != nil {
		return false, fmt.Errorf("query %q failed for %s: %w", q.source, f.ID, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

// Select returns the features matching the query, preserving order.
func (q *Query) Select(d Doc, features []Feature) ([]Feature, error) {
	phases := PhasesByID(d)
	var out []Feature
	for _, f := range features {
		ok, err := q.Match(f, phases)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, nil
}

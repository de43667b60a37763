package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Filter is a compiled boolean predicate over a candidate entity.
type Filter struct {
	expr   string
	prg    cel.Program
	fields []string
}

// NewFilter compiles expr, which must produce a bool. The entity is "_" and
// the typed keyword is "keyword":
//
//	_.active && _.name.lowerAscii().startsWith(keyword.lowerAscii())
func (e *Evaluator) NewFilter(expr string) (*Filter, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("filter %q must produce a bool, not %s", expr, ast.OutputType())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	fields, err := referencedFields(ast)
	if err != nil {
		return nil, err
	}
	return &Filter{expr: expr, prg: prg, fields: fields}, nil
}

func (f *Filter) String() string { return f.expr }

// Fields returns the top-level entity fields the filter reads, sorted.
func (f *Filter) Fields() []string { return f.fields }

// Match evaluates the filter for one entity. An entity missing a field the
// filter reads does not match.
func (f *Filter) Match(entity map[string]any, keyword string) (bool, error) {
	for _, name := range f.fields {
		if _, ok := entity[name]; !ok {
			return false, nil
		}
	}
	out, _, err := f.prg.Eval(map[string]any{"_": entity, "keyword": keyword})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("filter %q produced %s, not bool", f.expr, out.Type().TypeName())
	}
	return bool(b), nil
}

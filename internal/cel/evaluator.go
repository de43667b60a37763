// Package cel evaluates CEL expressions over mention documents and candidate
// entities. Expressions see the subject as "_"; entity filters also see the
// typed keyword as "keyword".
package cel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the standard extension libraries.
// opts extend the environment, e.g. with custom functions.
func NewEvaluator(opts ...cel.EnvOption) (*Evaluator, error) {
	env, err := newMentionEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Environment returns the CEL environment for introspection.
func (e *Evaluator) Environment() *cel.Env {
	return e.env
}

func newMentionEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	all := make([]cel.EnvOption, 0, 6+len(opts))
	all = append(all,
		cel.Variable("_", cel.DynType),
		cel.Variable("keyword", cel.StringType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	all = append(all, opts...)
	return cel.NewEnv(all...)
}

// Evaluate evaluates expr with data bound to "_" and an empty keyword.
// Example: "_.mentions.map(m, m.id)".
func (e *Evaluator) Evaluate(expr string, data any) (any, error) {
	prg, err := e.compile(expr)
	if err != nil {
		return nil, err
	}
	out, _, err := prg.Eval(map[string]any{"_": data, "keyword": ""})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(out), nil
}

func (e *Evaluator) compile(expr string) (cel.Program, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return prg, nil
}

// ToGo converts CEL values to plain Go values recursively. Map keys become
// strings.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}
	return fromNative(val.Value())
}

func fromNative(v any) any {
	switch t := v.(type) {
	case ref.Val:
		return ToGo(t)
	case []ref.Val:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = ToGo(elem)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = fromNative(elem)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[fmt.Sprint(ToGo(k))] = ToGo(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = fromNative(elem)
		}
		return out
	default:
		return v
	}
}

// Functions lists the environment's functions as "name() - usage" entries,
// skipping operators and internal macros. hints are appended after " | ".
func (e *Evaluator) Functions(hints map[string]string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 100)
	add := func(entry, name string) {
		if hint, ok := hints[name]; ok {
			entry += " | " + hint
		}
		if !seen[entry] {
			seen[entry] = true
			out = append(out, entry)
		}
	}

	for _, fn := range e.env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			add(fn.Name()+"() - "+usage(fn.Name(), o), fn.Name())
		}
	}
	for _, m := range e.env.Macros() {
		if isOperator(m.Function()) {
			continue
		}
		add(m.Function()+"() - CEL macro", m.Function())
	}
	sort.Strings(out)
	return out
}

func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") || strings.HasPrefix(name, "!") || strings.HasPrefix(name, "-") {
		return true
	}
	return strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") || name == "_[_]"
}

func usage(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	call := name + "(" + typeList(params) + ")"
	if o.IsMemberFunction() && len(params) > 0 {
		call = typeLabel(params[0]) + "." + name + "(" + typeList(params[1:]) + ")"
	}
	if o.ResultType() != nil {
		call += " -> " + typeLabel(o.ResultType())
	}
	return call
}

func typeList(params []*types.Type) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = typeLabel(p)
	}
	return strings.Join(parts, ", ")
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	return "any"
}

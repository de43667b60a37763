package cel

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ReferencedFields parses expr and returns the fields selected directly on
// "_", such as "name" in `_.name.startsWith(keyword)`, sorted and deduplicated.
func (e *Evaluator) ReferencedFields(expr string) ([]string, error) {
	ast, issues := e.env.Parse(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("parse error: %w", issues.Err())
	}
	return referencedFields(ast)
}

func referencedFields(ast *cel.Ast) ([]string, error) {
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("convert expression: %w", err)
	}
	seen := make(map[string]bool)
	walkFields(parsed.GetExpr(), seen)

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func walkFields(e *exprpb.Expr, seen map[string]bool) {
	if e == nil {
		return
	}
	switch e.ExprKind.(type) {
	case *exprpb.Expr_SelectExpr:
		sel := e.GetSelectExpr()
		if ident := sel.GetOperand().GetIdentExpr(); ident != nil && ident.GetName() == "_" && !sel.GetTestOnly() {
			seen[sel.GetField()] = true
		}
		walkFields(sel.GetOperand(), seen)

	case *exprpb.Expr_CallExpr:
		call := e.GetCallExpr()
		if call.GetFunction() == "_[_]" && len(call.GetArgs()) == 2 {
			if ident := call.GetArgs()[0].GetIdentExpr(); ident != nil && ident.GetName() == "_" {
				if key := call.GetArgs()[1].GetConstExpr(); key != nil {
					if _, ok := key.GetConstantKind().(*exprpb.Constant_StringValue); ok {
						seen[key.GetStringValue()] = true
					}
				}
			}
		}
		walkFields(call.GetTarget(), seen)
		for _, arg := range call.GetArgs() {
			walkFields(arg, seen)
		}

	case *exprpb.Expr_ListExpr:
		for _, elem := range e.GetListExpr().GetElements() {
			walkFields(elem, seen)
		}

	case *exprpb.Expr_StructExpr:
		for _, entry := range e.GetStructExpr().GetEntries() {
			walkFields(entry.GetMapKey(), seen)
			walkFields(entry.GetValue(), seen)
		}

	case *exprpb.Expr_ComprehensionExpr:
		c := e.GetComprehensionExpr()
		walkFields(c.GetIterRange(), seen)
		walkFields(c.GetAccuInit(), seen)
		walkFields(c.GetLoopCondition(), seen)
		walkFields(c.GetLoopStep(), seen)
		walkFields(c.GetResult(), seen)
	}
}

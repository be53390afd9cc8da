package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// selection locates the AST nodes that led to the field being resolved. The
// executor only hands a resolver its own arguments, so ownership keys declared
// on the parent field are recovered by replaying the response path against the
// operation.
type selection struct {
	root   *ast.Field
	parent *ast.Field
}

// locate walks info.Operation along info.Path. List indices in the path are
// skipped; aliases, inline fragments and fragment spreads are followed.
func locate(info graphql.ResolveInfo) (selection, error) {
	op, ok := info.Operation.(*ast.OperationDefinition)
	if !ok || op == nil {
		return selection{}, fmt.Errorf("no operation in resolve info")
	}

	var keys []string
	for _, key := range pathKeys(info.Path) {
		if s, ok := key.(string); ok {
			keys = append(keys, s)
		}
	}
	if len(keys) == 0 {
		return selection{}, fmt.Errorf("empty response path")
	}

	var (
		sel   selection
		set   = op.SelectionSet
		trail []*ast.Field
	)
	for _, key := range keys {
		field := findField(set, key, info.Fragments, map[string]bool{})
		if field == nil {
			return selection{}, fmt.Errorf("no selection for response key %q", key)
		}
		trail = append(trail, field)
		set = field.SelectionSet
	}
	sel.root = trail[0]
	if len(trail) > 1 {
		sel.parent = trail[len(trail)-2]
	}
	return sel, nil
}

func pathKeys(path *graphql.ResponsePath) []any {
	if path == nil {
		return nil
	}
	return path.AsArray()
}

// findField returns the field in set whose response key is key. visited guards
// against fragment cycles, which validation rejects but a resolver should not
// trust.
func findField(set *ast.SelectionSet, key string, fragments map[string]ast.Definition, visited map[string]bool) *ast.Field {
	if set == nil {
		return nil
	}
	for _, s := range set.Selections {
		switch node := s.(type) {
		case *ast.Field:
			if responseKey(node) == key {
				return node
			}
		case *ast.InlineFragment:
			if f := findField(node.SelectionSet, key, fragments, visited); f != nil {
				return f
			}
		case *ast.FragmentSpread:
			if node.Name == nil || visited[node.Name.Value] {
				continue
			}
			visited[node.Name.Value] = true
			def, ok := fragments[node.Name.Value].(*ast.FragmentDefinition)
			if !ok {
				continue
			}
			if f := findField(def.SelectionSet, key, fragments, visited); f != nil {
				return f
			}
		}
	}
	return nil
}

func responseKey(f *ast.Field) string {
	if f.Alias != nil && f.Alias.Value != "" {
		return f.Alias.Value
	}
	if f.Name == nil {
		return ""
	}
	return f.Name.Value
}

func fieldName(f *ast.Field) string {
	if f == nil || f.Name == nil {
		return ""
	}
	return f.Name.Value
}

// stringArgument evaluates the named argument of f as a string. Literal strings
// and variables bound to strings are supported; anything else reads as "".
func stringArgument(f *ast.Field, name string, variables map[string]any) string {
	if f == nil {
		return ""
	}
	for _, arg := range f.Arguments {
		if arg.Name == nil || arg.Name.Value != name {
			continue
		}
		switch v := arg.Value.(type) {
		case *ast.StringValue:
			return v.Value
		case *ast.IntValue:
			return v.Value
		case *ast.Variable:
			if v.Name == nil {
				return ""
			}
			if s, ok := variables[v.Name.Value].(string); ok {
				return s
			}
		}
		return ""
	}
	return ""
}

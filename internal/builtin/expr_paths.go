package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/darmiel/verdict/internal/core"
)

// exprPaths returns the context paths code reads, longest member chains only.
// Constructs that could observe or replace a missing variable (nil, ??, ?.)
// are rejected.
func exprPaths(code string) ([]string, error) {
	tree, err := parser.Parse(code)
	if err != nil {
		return nil, err
	}
	c := &pathCollector{
		callees:  make(map[ast.Node]struct{}),
		declared: make(map[string]struct{}),
	}
	ast.Walk(&tree.Node, c)
	if c.err != nil {
		return nil, c.err
	}

	found := make(map[string]struct{})
	for _, m := range c.members {
		if _, callee := c.callees[m]; callee {
			continue
		}
		if path, ok := c.chainPath(m); ok {
			found[path] = struct{}{}
		}
	}
	for _, id := range c.idents {
		if _, callee := c.callees[id]; callee {
			continue
		}
		if path, ok := c.chainPath(id); ok {
			found[path] = struct{}{}
		}
	}

	paths := make([]string, 0, len(found))
	for path := range found {
		prefix := false
		for other := range found {
			if strings.HasPrefix(other, path+core.PathSeparator) {
				prefix = true
				break
			}
		}
		if !prefix {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

type pathCollector struct {
	members  []*ast.MemberNode
	idents   []*ast.IdentifierNode
	callees  map[ast.Node]struct{}
	declared map[string]struct{}
	err      error
}

func (c *pathCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.NilNode:
		c.fail("nil is not allowed, missing variables are errors")
	case *ast.BinaryNode:
		if n.Operator == "??" {
			c.fail("'??' is not allowed, missing variables are errors")
		}
	case *ast.MemberNode:
		if n.Optional {
			c.fail("'?.' is not allowed, missing variables are errors")
		}
		c.members = append(c.members, n)
	case *ast.IdentifierNode:
		c.idents = append(c.idents, n)
	case *ast.CallNode:
		c.callees[n.Callee] = struct{}{}
	case *ast.VariableDeclaratorNode:
		c.declared[n.Name] = struct{}{}
	}
}

func (c *pathCollector) fail(reason string) {
	if c.err == nil {
		c.err = fmt.Errorf("%s", reason)
	}
}

// chainPath renders a chain of identifier and constant string members as a
// dotted path. Index expressions, predicate pointers and declared variables are not paths.
func (c *pathCollector) chainPath(n ast.Node) (string, bool) {
	switch n := n.(type) {
	case *ast.IdentifierNode:
		if strings.HasPrefix(n.Value, "$") {
			return "", false
		}
		if _, ok := c.declared[n.Value]; ok {
			return "", false
		}
		return n.Value, true
	case *ast.MemberNode:
		prop, ok := n.Property.(*ast.StringNode)
		if !ok {
			return "", false
		}
		base, ok := c.chainPath(n.Node)
		if !ok {
			return "", false
		}
		return base + core.PathSeparator + prop.Value, true
	}
	return "", false
}

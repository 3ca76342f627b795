// Modul nodes: Bezeichner im Parse-Tree sammeln
package template

import (
	"errors"
	"text/template/parse"
)

// identifiers sammelt Feld- und Variablennamen aus dem Teilbaum unter n.
func identifiers(n parse.Node) ([]string, error) {
	var names []string
	var walk func(parse.Node) error
	walk = func(n parse.Node) error {
		switch n := n.(type) {
		case *parse.ListNode:
			if n == nil {
				return nil
			}
			for _, c := range n.Nodes {
				if err := walk(c); err != nil {
					return err
				}
			}
		case *parse.ActionNode:
			if n.Pipe == nil {
				return errors.New("undefined action in template")
			}
			return walk(n.Pipe)
		case *parse.TemplateNode:
			if n.Pipe == nil {
				return nil
			}
			return walk(n.Pipe)
		case *parse.IfNode:
			return walkBranch(walk, &n.BranchNode)
		case *parse.RangeNode:
			return walkBranch(walk, &n.BranchNode)
		case *parse.WithNode:
			return walkBranch(walk, &n.BranchNode)
		case *parse.PipeNode:
			for _, c := range n.Cmds {
				for _, a := range c.Args {
					if err := walk(a); err != nil {
						return err
					}
				}
			}
		case *parse.FieldNode:
			names = append(names, n.Ident...)
		case *parse.ChainNode:
			names = append(names, n.Field...)
			return walk(n.Node)
		case *parse.VariableNode:
			names = append(names, n.Ident...)
		}
		return nil
	}

	err := walk(n)
	return names, err
}

func walkBranch(walk func(parse.Node) error, b *parse.BranchNode) error {
	if b.Pipe == nil {
		return errors.New("undefined branch")
	}
	if err := walk(b.Pipe); err != nil {
		return err
	}
	if b.List != nil {
		if err := walk(b.List); err != nil {
			return err
		}
	}
	if b.ElseList != nil {
		return walk(b.ElseList)
	}
	return nil
}

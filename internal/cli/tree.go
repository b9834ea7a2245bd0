package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattinsler/protos/internal/compiler"
	"github.com/mattinsler/protos/internal/scope"
)

// TreeNode is one scope in the JSON output of tree.
type TreeNode struct {
	Name     string      `json:"name"`
	Fullname string      `json:"fullname"`
	Enums    []string    `json:"enums"`
	Messages []string    `json:"messages"`
	Services []string    `json:"services"`
	Children []*TreeNode `json:"children"`
}

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <ir.json>",
		Short: "Print the package scope tree of an IR file",
		Long: `Print the IR grouped by package segment. Each scope lists its enums,
messages and services followed by its child scopes in name order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runTree(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	spec, err := compiler.LoadSpec(path)
	if err != nil {
		return formatter.fail(err)
	}
	spec.Sort()
	root := scope.From(spec)

	if formatter.Format == "json" {
		return formatter.Success(treeNode(root))
	}

	w := formatter.Writer
	root.Walk(func(sc *scope.Scope, depth int) bool {
		pad := strings.Repeat("  ", depth)
		name := sc.Name
		if depth == 0 {
			name = "."
		}
		fmt.Fprintf(w, "%s%s\n", pad, name)
		for _, e := range sc.Enums {
			fmt.Fprintf(w, "%s  enum %s\n", pad, e.Name)
		}
		for _, m := range sc.Messages {
			fmt.Fprintf(w, "%s  message %s\n", pad, m.Name)
		}
		for _, s := range sc.Services {
			fmt.Fprintf(w, "%s  service %s\n", pad, s.Name)
		}
		return true
	})
	return nil
}

func treeNode(sc *scope.Scope) *TreeNode {
	n := &TreeNode{
		Name:     sc.Name,
		Fullname: sc.Fullname,
		Enums:    []string{},
		Messages: []string{},
		Services: []string{},
		Children: []*TreeNode{},
	}
	for _, e := range sc.Enums {
		n.Enums = append(n.Enums, e.Name)
	}
	for _, m := range sc.Messages {
		n.Messages = append(n.Messages, m.Name)
	}
	for _, s := range sc.Services {
		n.Services = append(n.Services, s.Name)
	}
	for _, c := range sc.SortedChildren() {
		n.Children = append(n.Children, treeNode(c))
	}
	return n
}

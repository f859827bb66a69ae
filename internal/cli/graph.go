package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [project]",
	Short: "Show the DAG dependency tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}

	view, err := eng.Graph(args[0])
	if err != nil {
		return err
	}
	p := view.Project
	forest := view.Forest

	fmt.Printf("%s%s — dependency graph%s\n\n", colorBold, p.ID, colorReset)

	printed := map[string]bool{}
	var printTree func(id, prefix string, isLast bool)
	printTree = func(id, prefix string, isLast bool) {
		connector := "├─"
		if isLast {
			connector = "└─"
		}
		st, _ := p.Stages.Get(id)
		if printed[id] {
			fmt.Printf("%s%s %s %s %s(↑ see above)%s\n", prefix, connector, statusIcon(st.Status), id, colorDim, colorReset)
			return
		}
		printed[id] = true

		fmt.Printf("%s%s %s %s [%s]\n", prefix, connector, statusIcon(st.Status), id, st.Agent)

		kids := forest.Children[id]
		childPrefix := prefix + "│  "
		if isLast {
			childPrefix = prefix + "   "
		}
		for i, child := range kids {
			printTree(child, childPrefix, i == len(kids)-1)
		}
	}

	for i, root := range forest.Roots {
		printTree(root, "", i == len(forest.Roots)-1)
	}

	if len(forest.Orphans) > 0 {
		fmt.Printf("\n%sUnreachable tasks: %s%s\n", colorYellow, strings.Join(forest.Orphans, ", "), colorReset)
	}

	done, total := p.Progress()
	fmt.Printf("\nProgress: [%s] %d/%d\n", progressBar(done, total), done, total)
	return nil
}

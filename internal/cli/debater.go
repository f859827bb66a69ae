package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var debaterRole string

var debaterCmd = &cobra.Command{
	Use:   "debater [project] [agent-id]",
	Short: "Add a debater to a debate project",
	Long:  "Registers a debater. Registration closes permanently once the first round starts.",
	Args:  cobra.ExactArgs(2),
	RunE:  runDebater,
}

func init() {
	debaterCmd.Flags().StringVarP(&debaterRole, "role", "r", "", "Debater role/perspective")
}

func runDebater(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}

	if _, err := eng.AddDebater(args[0], args[1], debaterRole); err != nil {
		return err
	}

	roleStr := ""
	if debaterRole != "" {
		roleStr = fmt.Sprintf(" (%s)", debaterRole)
	}
	fmt.Printf("%s✓%s Added debater %q%s\n", colorGreen, colorReset, args[1], roleStr)
	return nil
}

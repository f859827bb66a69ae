package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/imkarma/relay/internal/config"
	"github.com/imkarma/relay/internal/engine"
	"github.com/imkarma/relay/internal/state"
	"github.com/spf13/cobra"
)

var (
	initMode      string
	initGoal      string
	initPipeline  string
	initWorkspace string
	initForce     bool
)

var initCmd = &cobra.Command{
	Use:   "init [project]",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initMode, "mode", "m", "linear", "Pipeline mode: linear, dag, or debate")
	initCmd.Flags().StringVarP(&initGoal, "goal", "g", "", "Project goal description")
	initCmd.Flags().StringVarP(&initPipeline, "pipeline", "p", "", "Comma-separated agent order (linear mode only)")
	initCmd.Flags().StringVarP(&initWorkspace, "workspace", "w", "", "Shared workspace path for all agents")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing project")
}

func runInit(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}

	mode, err := state.ParseMode(initMode)
	if err != nil {
		return err
	}

	var pipeline []string
	if mode == state.ModeLinear {
		if initPipeline != "" {
			for _, stage := range strings.Split(initPipeline, ",") {
				if stage = strings.TrimSpace(stage); stage != "" {
					pipeline = append(pipeline, stage)
				}
			}
		} else {
			pipeline = config.Resolve().DefaultPipeline
		}
	}

	p, err := eng.CreateProject(args[0], mode, engine.CreateOptions{
		Goal:      initGoal,
		Workspace: initWorkspace,
		Pipeline:  pipeline,
		Force:     initForce,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

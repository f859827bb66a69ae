package cli

import (
	"fmt"
	"strings"

	"github.com/imkarma/relay/internal/prompt"
	"github.com/imkarma/relay/internal/state"
	"github.com/spf13/cobra"
)

var roundCmd = &cobra.Command{
	Use:   "round [project] [start|collect|cross-review|synthesize]",
	Short: "Debate round actions",
	Long: "Drives the debate protocol:\n" +
		"  start         open round 1 (initial positions)\n" +
		"  collect       record a debater's response: round <project> collect <agent-id> \"text\"\n" +
		"  cross-review  open round 2 with each debater's review bundle\n" +
		"  synthesize    render the synthesis package (marks the project completed\n" +
		"                once the cross-review round is done)",
	Args: cobra.MinimumNArgs(2),
	RunE: runRound,
}

func runRound(cmd *cobra.Command, args []string) error {
	eng, _, err := mustEngine()
	if err != nil {
		return err
	}
	project, action := args[0], args[1]

	switch action {
	case "start":
		res, err := eng.StartRound(project)
		if err != nil {
			return err
		}
		fmt.Printf("%sDebate round 1 (initial) started%s\n\n", colorBold, colorReset)
		fmt.Print(prompt.RoundStart(res))
		return nil

	case "collect":
		if len(args) < 4 {
			return fmt.Errorf("usage: relay round <project> collect <agent-id> \"text\"")
		}
		res, err := eng.CollectResponse(project, args[2], strings.Join(args[3:], " "))
		if err != nil {
			return err
		}
		if res.RoundDone {
			fmt.Printf("%s✓%s Collected response from %s. Round %d (%s) is complete.\n",
				colorGreen, colorReset, res.DebaterID, res.Round, res.Type)
			switch res.Type {
			case state.RoundInitial:
				fmt.Printf("Next: relay round %s cross-review\n", project)
			case state.RoundCrossReview:
				fmt.Printf("Next: relay round %s synthesize\n", project)
			}
		} else {
			fmt.Printf("%s✓%s Collected response from %s. Waiting for: %s\n",
				colorGreen, colorReset, res.DebaterID, strings.Join(res.Missing, ", "))
		}
		return nil

	case "cross-review":
		res, err := eng.CrossReview(project)
		if err != nil {
			return err
		}
		fmt.Printf("%sCross-review prompts%s\n\n", colorBold, colorReset)
		fmt.Print(prompt.CrossReview(res))
		return nil

	case "synthesize":
		res, err := eng.Synthesize(project)
		if err != nil {
			return err
		}
		fmt.Printf("%sSynthesis package for %s%s\n", colorBold, project, colorReset)
		fmt.Print(prompt.Synthesis(res))
		if res.Completed {
			fmt.Printf("\n%sProject completed.%s\n", colorGreen, colorReset)
		}
		return nil
	}

	return fmt.Errorf("unknown round action %q", action)
}

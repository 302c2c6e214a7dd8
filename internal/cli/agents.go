package cli

import (
	"fmt"

	"github.com/perimetric/council/internal/agents"
	"github.com/spf13/cobra"
)

var agentsRoster string

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the agent panel",
	Long: `List the agents available for reviews and their configuration.

Examples:
  council agents
  council agents --roster team.yaml`,
	RunE: runAgents,
}

func init() {
	agentsCmd.Flags().StringVar(&agentsRoster, "roster", "", "YAML roster file to evaluate")
}

func runAgents(cmd *cobra.Command, args []string) error {
	rosterPath := agentsRoster
	if rosterPath == "" {
		rosterPath = cfg.RosterPath
	}

	infos, err := agents.Describe(rosterPath)
	if err != nil {
		return err
	}

	fmt.Printf("%-14s %-20s %-10s %s\n", "ID", "NAME", "STATUS", "MODEL")
	fmt.Println("------------------------------------------------------------")

	enabled := 0
	for _, info := range infos {
		status := "ready"
		if !info.Enabled {
			status = "disabled"
		} else {
			enabled++
		}
		model := info.Model
		if model == "" {
			model = cfg.LLMModel
		}
		fmt.Printf("%-14s %-20s %-10s %s\n", info.ID, info.Name, status, model)
	}

	fmt.Printf("\n%d of %d agents enabled\n", enabled, len(infos))
	return nil
}

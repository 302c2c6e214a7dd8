package agents

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Agent ids accepted in rosters and on the command line.
const (
	AgentSecurity     = "security"
	AgentPerformance  = "performance"
	AgentQuality      = "quality"
	AgentArchitecture = "architecture"
)

var displayNames = map[string]string{
	AgentSecurity:     "Security Agent",
	AgentPerformance:  "Performance Agent",
	AgentQuality:      "Quality Agent",
	AgentArchitecture: "Architecture Agent",
}

// Defaults returns every known agent id in canonical order.
func Defaults() []string {
	return []string{AgentSecurity, AgentPerformance, AgentQuality, AgentArchitecture}
}

// DisplayName returns the human-readable name for an agent id, or the
// id itself when unknown.
func DisplayName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	return id
}

// Builder creates a text generator for one agent. An empty model name
// selects the configured default model.
type Builder func(model string) (Generator, error)

type rosterFile struct {
	Agents []rosterEntry `yaml:"agents"`
}

type rosterEntry struct {
	ID      string `yaml:"id"`
	Enabled *bool  `yaml:"enabled"`
	Model   string `yaml:"model"`
}

// BuildRoster assembles the analyzers for a review run. ids selects a
// subset of the known agents (empty means all), rosterPath optionally
// names a YAML file that disables agents or overrides their model, and
// fileWorkers bounds each agent's per-file concurrency when positive.
func BuildRoster(ids []string, rosterPath string, fileWorkers int, build Builder) ([]Analyzer, error) {
	if len(ids) == 0 {
		ids = Defaults()
	}
	for _, id := range ids {
		if _, ok := displayNames[id]; !ok {
			return nil, fmt.Errorf("unknown agent id %q", id)
		}
	}

	disabled, overrides, err := rosterEffects(rosterPath)
	if err != nil {
		return nil, err
	}

	roster := make([]Analyzer, 0, len(ids))
	for _, id := range ids {
		if disabled[id] {
			continue
		}
		gen, err := build(overrides[id])
		if err != nil {
			return nil, fmt.Errorf("build generator for %s: %w", id, err)
		}
		roster = append(roster, newAgent(id, gen, fileWorkers))
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("no agents enabled")
	}
	return roster, nil
}

// Info describes one agent of the panel for listings.
type Info struct {
	ID      string
	Name    string
	Enabled bool
	Model   string
}

// Describe reports the panel the given roster file would produce, without
// building any generators. An empty rosterPath describes the default panel.
func Describe(rosterPath string) ([]Info, error) {
	disabled, overrides, err := rosterEffects(rosterPath)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(displayNames))
	for _, id := range Defaults() {
		infos = append(infos, Info{
			ID:      id,
			Name:    DisplayName(id),
			Enabled: !disabled[id],
			Model:   overrides[id],
		})
	}
	return infos, nil
}

// rosterEffects reads a roster file into its disable set and model overrides.
func rosterEffects(rosterPath string) (disabled map[string]bool, overrides map[string]string, err error) {
	disabled = map[string]bool{}
	overrides = map[string]string{}
	if rosterPath == "" {
		return disabled, overrides, nil
	}

	rf, err := loadRosterFile(rosterPath)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range rf.Agents {
		if _, ok := displayNames[entry.ID]; !ok {
			return nil, nil, fmt.Errorf("roster %s: unknown agent id %q", rosterPath, entry.ID)
		}
		if entry.Enabled != nil && !*entry.Enabled {
			disabled[entry.ID] = true
		}
		if entry.Model != "" {
			overrides[entry.ID] = entry.Model
		}
	}
	return disabled, overrides, nil
}

func newAgent(id string, gen Generator, fileWorkers int) Analyzer {
	b := base{id: id, name: DisplayName(id), gen: gen, workers: defaultFileWorkers}
	if fileWorkers > 0 {
		b.workers = fileWorkers
	}
	switch id {
	case AgentPerformance:
		return &Performance{base: b}
	case AgentQuality:
		return &Quality{base: b}
	case AgentArchitecture:
		return &Architecture{base: b}
	default:
		return &Security{base: b}
	}
}

func loadRosterFile(path string) (*rosterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return &rf, nil
}

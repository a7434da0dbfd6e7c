package agents

import (
	"fmt"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// Ports is the fixed RPC/card port pair assigned to an agent identity.
// The scheme is the addressing contract by which the pipeline driver
// locates each agent; it must stay stable across an integration.
type Ports struct {
	RPC  int
	Card int
}

// DefaultPorts maps each agent identity to its port pair.
var DefaultPorts = map[string]Ports{
	"classifier":      {RPC: 8001, Card: 9001},
	"grounding":       {RPC: 8002, Card: 9002},
	"personalization": {RPC: 8003, Card: 9003},
	"orchestrator":    {RPC: 8004, Card: 9004},
	"reasoning":       {RPC: 8005, Card: 9005},
	"policy":          {RPC: 8006, Card: 9006},
	"executor":        {RPC: 8007, Card: 9007},
	"notification":    {RPC: 8008, Card: 9008},
	"validator":       {RPC: 8009, Card: 9009},
	"watcher":         {RPC: 8010, Card: 9000},
	"llmjudge":        {RPC: 8011, Card: 9011},
}

var cardInfo = map[string]struct {
	name        string
	methods     []string
	description string
}{
	"classifier":      {"ClassifierAgent", []string{"classify"}, "Classifies alerts using rules and LLM fallback."},
	"grounding":       {"GroundingAgent", []string{"ground"}, "Enriches alerts with context using vector search."},
	"personalization": {"PersonalizationAgent", []string{"personalize"}, "Injects organisation-specific remediation examples."},
	"orchestrator":    {"OrchestratorAgent", []string{"orchestrate"}, "Creates, signs and persists pipeline envelopes."},
	"reasoning":       {"ReasoningAgent", []string{"reason"}, "Performs LLM-based reasoning and remediation planning."},
	"policy":          {"PolicyAgent", []string{"policy_check"}, "Evaluates proposed actions against policy."},
	"executor":        {"ExecutorAgent", []string{"execute"}, "Executes approved remediation actions."},
	"notification":    {"NotificationAgent", []string{"notify", "notify_with_solution"}, "Sends notifications and escalations."},
	"validator":       {"ValidatorAgent", []string{"validate"}, "Validates post-execution state."},
	"watcher":         {"WatcherAgent", []string{"ingest"}, "Ingests and normalizes alerts from the message bus and other sources."},
	"llmjudge":        {"LLMJudgeAgent", []string{"judge"}, "Evaluates recorded flows for quality."},
}

// KnownAgent reports whether name is a recognised agent identity.
func KnownAgent(name string) bool {
	_, ok := DefaultPorts[name]
	return ok
}

// CardFor builds the static metadata card an agent serves for
// discovery.
func CardFor(agent, host string) (models.AgentCard, error) {
	ports, ok := DefaultPorts[agent]
	if !ok {
		return models.AgentCard{}, fmt.Errorf("unknown agent: %s", agent)
	}
	info := cardInfo[agent]
	if host == "" {
		host = "localhost"
	}
	return models.AgentCard{
		ID:          agent + "-agent",
		Name:        info.name,
		Endpoint:    fmt.Sprintf("http://%s:%d/rpc", host, ports.RPC),
		Methods:     append(append([]string(nil), info.methods...), "get_agent_card"),
		Description: info.description,
		Version:     "1.0.0",
		Owner:       "SRE Automation Team",
	}, nil
}

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sentinelstack/sentinel-agents/internal/llm"
	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// Judge scores replayed pipeline flows offline. It is evaluation-only
// and never sits in the online remediation path.
type Judge struct {
	runner llm.Runner
	logger *slog.Logger
}

func NewJudge(runner llm.Runner, logger *slog.Logger) *Judge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Judge{runner: runner, logger: logger}
}

// Judge scores a recorded flow. The LLM judge is preferred; any
// failure falls back to a deterministic rubric over the flow record.
func (j *Judge) Judge(ctx context.Context, flow models.FlowRecord) models.JudgeScore {
	if j.runner != nil {
		if score, err := j.judgeWithLLM(ctx, flow); err == nil {
			j.logScore(flow, score)
			return score
		} else {
			j.logger.Warn("llm judge failed, using rubric", "flow_id", flow.FlowID, "error", err)
		}
	}

	score := rubricScore(flow)
	j.logScore(flow, score)
	return score
}

func (j *Judge) judgeWithLLM(ctx context.Context, flow models.FlowRecord) (models.JudgeScore, error) {
	flowJSON, err := json.Marshal(flow)
	if err != nil {
		return models.JudgeScore{}, err
	}
	prompt := fmt.Sprintf(
		"You are evaluating an automated incident-response flow.\n\nFlow record: %s\n\nScore the flow's correctness from 0 to 100 and explain briefly.\nRespond as JSON matching schema: {\"score\": 0-100, \"comments\": \"...\"}",
		flowJSON,
	)

	result, err := j.runner.Run(ctx, prompt)
	if err != nil {
		return models.JudgeScore{}, err
	}
	payload, err := llm.ExtractJSON(result.Output)
	if err != nil {
		return models.JudgeScore{}, err
	}
	score, err := llm.IntField(payload, "score")
	if err != nil {
		return models.JudgeScore{}, err
	}
	if score < 0 || score > 100 {
		return models.JudgeScore{}, fmt.Errorf("score %d outside [0,100]", score)
	}
	return models.JudgeScore{
		Score:    score,
		Comments: llm.StringField(payload, "comments", ""),
		Method:   "llm",
	}, nil
}

// rubricScore derives a deterministic score from what the flow record
// actually captured: classification, a parsed proposal, an audited
// verdict, and a terminal outcome.
func rubricScore(flow models.FlowRecord) models.JudgeScore {
	score := 0
	if flow.QueryClass != "" && flow.QueryClass != "unknown" {
		score += 30
	}
	if flow.Proposal.Action != "" && flow.Proposal.Action != "none" {
		score += 30
	}
	if flow.Verdict.Reason != "" {
		score += 20
	}
	if flow.Execution.Success || flow.Notified {
		score += 20
	}
	return models.JudgeScore{
		Score:    score,
		Comments: fmt.Sprintf("rubric: class=%s action=%s admit=%t", flow.QueryClass, flow.Proposal.Action, flow.Verdict.Admit),
		Method:   "rubric",
	}
}

func (j *Judge) logScore(flow models.FlowRecord, score models.JudgeScore) {
	j.logger.Info("flow_judged",
		"flow_id", flow.FlowID,
		"score", score.Score,
		"method", score.Method,
	)
}

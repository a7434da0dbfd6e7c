package agents

import (
	"context"
	"log/slog"
	"time"

	"github.com/sentinelstack/sentinel-agents/internal/models"
	"github.com/sentinelstack/sentinel-agents/internal/repo"
	"github.com/sentinelstack/sentinel-agents/internal/utils"
)

// Signer produces the envelope signature. Implementations may call an
// external signing service.
type Signer func(env models.Envelope) (string, error)

// Orchestrator builds, signs and persists the envelopes that carry a
// flow's accumulated payload between stages.
type Orchestrator struct {
	store  repo.EnvelopeStore
	signer Signer
	logger *slog.Logger
	now    func() time.Time
}

func NewOrchestrator(store repo.EnvelopeStore, signer Signer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:  store,
		signer: signer,
		logger: logger,
		now:    time.Now,
	}
}

// Orchestrate fills envelope defaults, signs it and persists it.
// Persistence is best-effort: a store failure is logged and the signed
// envelope is still returned. Only signing can fail the call; callers
// must not take a nil error as confirmation of durability.
func (o *Orchestrator) Orchestrate(ctx context.Context, env models.Envelope) (models.Envelope, error) {
	now := o.now().UTC()
	if env.EnvelopeID == "" {
		env.EnvelopeID = models.NewEnvelopeID(now)
	}
	if env.CreatedAt == "" {
		env.CreatedAt = utils.UTCTimestamp(now)
	}
	if env.Agent == "" {
		env.Agent = "orchestrator"
	}
	if env.Payload == nil {
		env.Payload = map[string]any{}
	}

	if o.signer != nil {
		sig, err := o.signer(env)
		if err != nil {
			return models.Envelope{}, utils.NewAppError("orchestrate", "envelope signing failed", err)
		}
		env.Signature = sig
	} else {
		env.Signature = "signed-" + env.EnvelopeID
	}

	o.logger.Info("envelope_created",
		"envelope_id", env.EnvelopeID,
		"agent", env.Agent,
		"created_at", env.CreatedAt,
	)

	if o.store != nil {
		if err := o.store.Save(ctx, env); err != nil {
			o.logger.Error("envelope persistence failed", "envelope_id", env.EnvelopeID, "error", err)
		}
	}
	return env, nil
}

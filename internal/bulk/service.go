package bulk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"festpass/internal/kafka"
	"festpass/internal/logger"
	"festpass/internal/models"
	"festpass/internal/passes"
)

// MaxTargets bounds a single bulk request.
const MaxTargets = 100

// Supported actions.
const (
	ActionMarkUsed           = "mark-used"
	ActionRevertUsed         = "revert-used"
	ActionSoftDelete         = "soft-delete"
	ActionHardDelete         = "hard-delete"
	ActionForceVerifyPayment = "force-verify-payment"
)

var (
	ErrUnknownAction   = errors.New("unknown bulk action")
	ErrTooManyTargets  = fmt.Errorf("at most %d target ids per request", MaxTargets)
	ErrNoTargets       = errors.New("no target ids given")
	ErrWrongCollection = errors.New("action does not apply to target collection")
)

// Request is the bulk endpoint body.
type Request struct {
	Action           string   `json:"action"`
	TargetCollection string   `json:"targetCollection"`
	TargetIDs        []string `json:"targetIds"`
}

// Result reports partial success: failures on individual ids are
// excluded from the count, never surfaced as an error.
type Result struct {
	Updated int `json:"updated"`
}

// Processor applies one of a fixed set of state transitions to a
// batch of targets, reusing the single-pass transition logic so bulk
// and single mutations can never drift apart. Each applied transition
// writes its own audit entry; one audit stream event summarizes the
// invocation.
type Processor struct {
	Passes *passes.PassService
	Kafka  passes.KafkaPublisher
	Logger *logger.Logger
}

func NewProcessor(passService *passes.PassService, producer passes.KafkaPublisher, log *logger.Logger) *Processor {
	return &Processor{Passes: passService, Kafka: producer, Logger: log}
}

func (p *Processor) Apply(ctx context.Context, req Request, actor passes.Actor) (*Result, error) {
	if len(req.TargetIDs) == 0 {
		return nil, ErrNoTargets
	}
	if len(req.TargetIDs) > MaxTargets {
		return nil, ErrTooManyTargets
	}

	apply, err := p.transition(req)
	if err != nil {
		return nil, err
	}

	updated := 0
	for _, id := range req.TargetIDs {
		if err := apply(ctx, id, actor); err != nil {
			// Best effort per item; one bad id degrades the count,
			// it does not abort the batch.
			p.Logger.Warn("BULK", fmt.Sprintf("%s on %s failed: %v", req.Action, id, err))
			continue
		}
		updated++
	}

	if err := p.Kafka.PublishAudit(kafka.AuditEvent{
		Action:           models.AuditActionBulk,
		TargetCollection: req.TargetCollection,
		TargetID:         fmt.Sprintf("%s x%d", req.Action, updated),
		Actor:            actor.UserID,
		Timestamp:        time.Now(),
	}); err != nil {
		p.Logger.Warn("KAFKA", fmt.Sprintf("bulk audit publish failed: %v", err))
	}

	p.Logger.Info("BULK", fmt.Sprintf("%s applied to %d/%d targets", req.Action, updated, len(req.TargetIDs)))
	return &Result{Updated: updated}, nil
}

type transitionFunc func(ctx context.Context, id string, actor passes.Actor) error

func (p *Processor) transition(req Request) (transitionFunc, error) {
	switch req.Action {
	case ActionMarkUsed:
		if req.TargetCollection != "passes" {
			return nil, ErrWrongCollection
		}
		return func(ctx context.Context, id string, actor passes.Actor) error {
			_, err := p.Passes.MarkUsed(ctx, id, actor)
			return err
		}, nil
	case ActionRevertUsed:
		if req.TargetCollection != "passes" {
			return nil, ErrWrongCollection
		}
		return func(ctx context.Context, id string, actor passes.Actor) error {
			_, err := p.Passes.RevertUsed(ctx, id, actor)
			return err
		}, nil
	case ActionSoftDelete:
		if req.TargetCollection != "passes" {
			return nil, ErrWrongCollection
		}
		return func(ctx context.Context, id string, actor passes.Actor) error {
			_, err := p.Passes.Archive(ctx, id, actor)
			return err
		}, nil
	case ActionHardDelete:
		if req.TargetCollection != "passes" {
			return nil, ErrWrongCollection
		}
		return func(ctx context.Context, id string, actor passes.Actor) error {
			return p.Passes.HardDelete(ctx, id, actor)
		}, nil
	case ActionForceVerifyPayment:
		if req.TargetCollection != "payments" {
			return nil, ErrWrongCollection
		}
		return func(ctx context.Context, id string, actor passes.Actor) error {
			_, err := p.Passes.ForceVerifyPayment(ctx, id, actor)
			return err
		}, nil
	default:
		return nil, ErrUnknownAction
	}
}

package summarize

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// UsageGate enforces the per-identity daily budget and records completed
// work for durable accounting. Satisfied by *sumanize.Engine.
type UsageGate interface {
	AllowUsage(ctx context.Context, identity string) error
	RecordUsage(ctx context.Context, identity string, summaries int, inputBytes int64)
}

// ServiceConfig tunes the summarization service.
//
// ServiceConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ServiceConfig struct {
	// MaxInputBytes caps the submitted content size. <= 0 means 1 MiB.
	MaxInputBytes int64

	// HistoryLimit caps how many summaries History returns. <= 0 means 20.
	HistoryLimit int
}

// Service orchestrates one summarization: quota check, prompt construction,
// remote completion, persistence, usage accounting.
//
// Service instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Service struct {
	cfg       ServiceConfig
	completer Completer
	store     Store
	gate      UsageGate
	now       func() time.Time
}

// NewService wires the service. completer and store are required; a nil gate
// disables quota enforcement (used by tests and open deployments).
func NewService(cfg ServiceConfig, completer Completer, store Store, gate UsageGate) (*Service, error) {
	if completer == nil {
		return nil, errors.New("completer required")
	}
	if store == nil {
		return nil, errors.New("store required")
	}
	if cfg.MaxInputBytes <= 0 {
		cfg.MaxInputBytes = 1 << 20
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	return &Service{
		cfg:       cfg,
		completer: completer,
		store:     store,
		gate:      gate,
		now:       time.Now,
	}, nil
}

// Summarize runs the full pipeline for identity. The quota is consumed
// before the remote call so a flood of oversized or failing requests still
// burns budget at most once each; validation failures cost nothing.
func (s *Service) Summarize(ctx context.Context, identity string, input Input) (Summary, error) {
	prompt, err := buildPrompt(input, s.cfg.MaxInputBytes)
	if err != nil {
		return Summary{}, err
	}

	if s.gate != nil {
		if err := s.gate.AllowUsage(ctx, identity); err != nil {
			return Summary{}, err
		}
	}

	markdown, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		ID:         uuid.NewString(),
		Identity:   identity,
		Kind:       input.Kind,
		Title:      input.Title,
		Markdown:   markdown,
		InputBytes: int64(len(input.Content)),
		CreatedAt:  s.now(),
	}
	if err := s.store.Save(ctx, summary); err != nil {
		return Summary{}, err
	}

	if s.gate != nil {
		s.gate.RecordUsage(ctx, identity, 1, summary.InputBytes)
	}

	return summary, nil
}

// History returns identity's most recent summaries, newest first.
func (s *Service) History(ctx context.Context, identity string) ([]Summary, error) {
	return s.store.ListByIdentity(ctx, identity, s.cfg.HistoryLimit)
}

// Get returns one of identity's summaries by ID.
func (s *Service) Get(ctx context.Context, identity, id string) (Summary, error) {
	return s.store.Get(ctx, identity, id)
}

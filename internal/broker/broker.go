package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Triage/internal/cache"
	"github.com/MikeSquared-Agency/Triage/internal/config"
	"github.com/MikeSquared-Agency/Triage/internal/hermes"
	"github.com/MikeSquared-Agency/Triage/internal/metrics"
	"github.com/MikeSquared-Agency/Triage/internal/risk"
	"github.com/MikeSquared-Agency/Triage/internal/roster"
	"github.com/MikeSquared-Agency/Triage/internal/scoring"
	"github.com/MikeSquared-Agency/Triage/internal/skill"
	"github.com/MikeSquared-Agency/Triage/internal/store"
	"github.com/MikeSquared-Agency/Triage/internal/talent"
	"github.com/MikeSquared-Agency/Triage/internal/textnorm"
)

// ErrNotReady is returned until the first artifact build has finished.
var ErrNotReady = errors.New("artifacts not ready")

type Broker struct {
	store  store.Store
	roster roster.Provider
	cache  cache.Cache
	hermes hermes.Client
	norm   *textnorm.Normalizer
	talent *talent.Scorer
	logger *slog.Logger

	skillOpts skill.Options
	topK      int

	buildMu   sync.Mutex
	artifacts atomic.Pointer[Artifacts]
}

// New wires the broker. A nil cache disables caching and a nil hermes client
// disables events.
func New(s store.Store, r roster.Provider, c cache.Cache, h hermes.Client, norm *textnorm.Normalizer, cfg *config.Config, logger *slog.Logger) *Broker {
	if c == nil {
		c = cache.Noop{}
	}
	return &Broker{
		store:  s,
		roster: r,
		cache:  c,
		hermes: h,
		norm:   norm,
		talent: talent.NewScorer(cfg.Assignment.TSMWeights, logger),
		logger: logger,
		skillOpts: skill.Options{
			MinDF:           cfg.Skill.MinDF,
			MaxDF:           cfg.Skill.MaxDF,
			TopNTags:        cfg.Skill.TopNTags,
			FrequencyWeight: cfg.Skill.FrequencyWeight,
			RelativeWeight:  cfg.Skill.RelativeWeight,
		},
		topK: cfg.Assignment.TopK,
	}
}

// EvaluateRisk computes the risk profile only.
func (b *Broker) EvaluateRisk(t Ticket) (risk.Profile, error) {
	a, err := b.Artifacts()
	if err != nil {
		return risk.Profile{}, err
	}
	t = t.Normalize()
	return a.Engine.Calculate(t.Text, t.RequestType, t.Urgency), nil
}

// RankCandidates returns every available engineer ranked by TSM score.
func (b *Broker) RankCandidates(ctx context.Context, text string) ([]scoring.Candidate, error) {
	a, err := b.Artifacts()
	if err != nil {
		return nil, err
	}
	return b.rank(ctx, a, text), nil
}

func (b *Broker) rank(ctx context.Context, a *Artifacts, text string) []scoring.Candidate {
	employees, err := b.roster.Employees(ctx)
	if err != nil {
		b.logger.Warn("roster fetch failed, treating as empty", "error", err)
		metrics.RosterFetchFailures.Inc()
		employees = nil
	}
	if len(employees) == 0 {
		return nil
	}

	workload, err := b.store.InProgressCounts(ctx)
	if err != nil {
		b.logger.Warn("workload unavailable", "error", err)
		workload = nil
	}

	return b.talent.Rank(talent.Inputs{
		Roster:   employees,
		Workload: workload,
		Skill:    a.Matcher.Match(text),
	})
}

// AssignTicket routes one ticket. It returns (nil, nil) when no engineer is
// available; that is an expected outcome, not a failure.
func (b *Broker) AssignTicket(ctx context.Context, t Ticket) (*scoring.Assignment, error) {
	start := time.Now()
	a, err := b.Artifacts()
	if err != nil {
		return nil, err
	}
	t = t.Normalize()

	profile := a.Engine.Calculate(t.Text, t.RequestType, t.Urgency)
	metrics.CRINormalized.Observe(profile.CRINormalized)

	top := talent.Top(b.rank(ctx, a, t.Text), b.topK)
	assignment := scoring.Select(profile, top)
	metrics.AssignmentDuration.Observe(time.Since(start).Seconds())

	if assignment == nil {
		b.logger.Warn("no available engineers", "ticket_id", t.ID, "risk_level", profile.RiskLevel)
		metrics.UnmatchedTotal.Inc()
		if t.ID != "" {
			b.publish(hermes.SubjectTicketUnmatched(t.ID), hermes.TicketUnmatchedEvent{
				TicketID:  t.ID,
				Reason:    "no available engineers",
				Timestamp: time.Now().UTC(),
			})
		}
		return nil, nil
	}

	assignment.AssignmentID = uuid.NewString()
	metrics.AssignmentsTotal.WithLabelValues(string(profile.RiskLevel)).Inc()
	b.logger.Info("ticket assigned",
		"ticket_id", t.ID,
		"assignment_id", assignment.AssignmentID,
		"engineer", assignment.SelectedEngineer,
		"risk_level", profile.RiskLevel,
		"cri_normalized", profile.CRINormalized,
		"score", assignment.AssignmentScore,
	)

	subjectID := t.ID
	if subjectID == "" {
		subjectID = assignment.AssignmentID
	}
	b.publish(hermes.SubjectTicketAssigned(subjectID), assignment)
	return assignment, nil
}

// BatchAssignment is the compact per-item result of a batch.
type BatchAssignment struct {
	RequestID  string     `json:"requestId"`
	EngineerID string     `json:"engineerId"`
	Score      float64    `json:"score"`
	CRI        float64    `json:"cri"`
	RiskLevel  risk.Level `json:"risk_level"`
	TSMScore   float64    `json:"tsm_score"`
	Reason     string     `json:"reason"`
}

type BatchResult struct {
	BatchID        string            `json:"batch_id"`
	Assignments    []BatchAssignment `json:"assignments"`
	TotalProcessed int               `json:"total_processed"`
	TotalRequests  int               `json:"total_requests"`
}

// AssignBatch routes each ticket independently. Invalid tickets, failed
// assignments and unmatched tickets are skipped.
func (b *Broker) AssignBatch(ctx context.Context, tickets []Ticket) (*BatchResult, error) {
	if !b.Ready() {
		return nil, ErrNotReady
	}
	res := &BatchResult{
		BatchID:       uuid.NewString(),
		Assignments:   []BatchAssignment{},
		TotalRequests: len(tickets),
	}
	for _, t := range tickets {
		if err := t.Validate(); err != nil {
			b.logger.Warn("skipping batch item", "batch_id", res.BatchID, "ticket_id", t.ID, "error", err)
			continue
		}
		a, err := b.AssignTicket(ctx, t)
		if err != nil {
			b.logger.Warn("batch item failed", "batch_id", res.BatchID, "ticket_id", t.ID, "error", err)
			continue
		}
		if a == nil {
			continue
		}
		res.Assignments = append(res.Assignments, BatchAssignment{
			RequestID:  t.ID,
			EngineerID: a.SelectedEngineer,
			Score:      a.AssignmentScore,
			CRI:        a.CRIAnalysis.CRINormalized,
			RiskLevel:  a.CRIAnalysis.RiskLevel,
			TSMScore:   a.TSMAnalysis.TSMScore,
			Reason:     a.RecommendationReason,
		})
	}
	res.TotalProcessed = len(res.Assignments)

	b.logger.Info("batch completed", "batch_id", res.BatchID, "processed", res.TotalProcessed, "requests", res.TotalRequests)
	b.publish(hermes.SubjectBatchCompleted(res.BatchID), hermes.BatchCompletedEvent{
		BatchID:        res.BatchID,
		TotalRequests:  res.TotalRequests,
		TotalProcessed: res.TotalProcessed,
		Timestamp:      time.Now().UTC(),
	})
	return res, nil
}

// SetupSubscriptions handles ticket requests arriving over NATS.
func (b *Broker) SetupSubscriptions(ctx context.Context) error {
	if b.hermes == nil {
		return nil
	}
	return b.hermes.Subscribe(hermes.SubjectTicketRequest, func(_ string, data []byte) {
		b.handleTicketRequest(ctx, data)
	})
}

func (b *Broker) handleTicketRequest(ctx context.Context, data []byte) {
	var req hermes.TicketRequestEvent
	if err := json.Unmarshal(data, &req); err != nil {
		b.logger.Warn("invalid ticket request event", "error", err)
		return
	}
	t := Ticket{ID: req.ID, Text: req.TicketText, RequestType: req.RequestType, Urgency: req.Urgency}
	if err := t.Validate(); err != nil {
		b.logger.Warn("rejected ticket request", "ticket_id", req.ID, "error", err)
		if req.ID != "" {
			b.publish(hermes.SubjectTicketUnmatched(req.ID), hermes.TicketUnmatchedEvent{
				TicketID:  req.ID,
				Reason:    err.Error(),
				Timestamp: time.Now().UTC(),
			})
		}
		return
	}
	if _, err := b.AssignTicket(ctx, t); err != nil {
		b.logger.Error("ticket request failed", "ticket_id", req.ID, "error", err)
	}
}

// publish never fails the caller.
func (b *Broker) publish(subject string, data any) {
	if b.hermes == nil {
		return
	}
	if err := b.hermes.Publish(subject, data); err != nil {
		b.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}

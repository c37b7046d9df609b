// Package settle runs settlement batches end to end: it loads a fresh
// member snapshot, computes commissions, and stores the result as an
// immutable log.
package settle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tierledger/settle/commission"
	"github.com/tierledger/settle/ledger"
	"github.com/tierledger/settle/member"
)

// Service coordinates the member repository, the commission engine and
// the log store. It holds no per-run state and is safe for concurrent use.
type Service struct {
	log     *zap.Logger
	members member.Repository
	logs    ledger.Store
	calc    *commission.Calculator
	now     func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithCalculator sets the engine used for runs.
func WithCalculator(c *commission.Calculator) Option {
	return func(s *Service) { s.calc = c }
}

// WithClock sets the time source for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets the log id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a Service. A nil logger disables logging.
func NewService(log *zap.Logger, members member.Repository, logs ledger.Store, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		log:     log,
		members: members,
		logs:    logs,
		calc:    commission.NewCalculator(),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run computes one settlement batch and persists it. rootID may be empty;
// when set, every known performer must lie in its subtree. Performers that
// are not known members are skipped, as are performers whose lineage
// cannot be walked; both are logged.
func (s *Service) Run(ctx context.Context, rootID string, inputs []commission.LeafInput) (*ledger.Log, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	members, err := s.members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadMembers, err)
	}
	idx := member.NewIndex(members)

	rootID = member.NormalizeID(rootID)
	if rootID != "" {
		if _, ok := idx.Get(rootID); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRoot, rootID)
		}
	}
	for _, in := range inputs {
		if _, ok := idx.Get(in.PerformerID); !ok {
			s.log.Warn("skipping unknown performer", zap.String("performer", in.PerformerID))
			continue
		}
		if rootID != "" && !idx.IsDescendant(rootID, in.PerformerID) {
			return nil, fmt.Errorf("%w: %s not under %s", ErrPerformerOutsideRoot, in.PerformerID, rootID)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := s.calc.Calculate(inputs, members)
	if err != nil {
		s.log.Warn("settlement inputs skipped", zap.Error(err))
	}

	totals := ledger.Totals(inputs)
	l := &ledger.Log{
		ID:               s.newID(),
		Timestamp:        s.now().UTC(),
		TotalCasinoInput: totals.Casino,
		TotalSlotInput:   totals.Slot,
		TotalLosingInput: totals.Losing,
		Results:          entries,
		SelectedRootID:   rootID,
		RawInputs:        append([]commission.LeafInput(nil), inputs...),
		MemberDigest:     ledger.Digest(members),
	}
	if err := s.logs.Put(ctx, l); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistLog, err)
	}

	s.log.Info("settlement stored",
		zap.String("id", l.ID),
		zap.String("root", rootID),
		zap.Int("inputs", len(inputs)),
		zap.Int("entries", len(entries)),
		zap.Float64("casino", totals.Casino),
		zap.Float64("slot", totals.Slot),
		zap.Float64("losing", totals.Losing),
	)
	return l, nil
}

// Reloaded is a stored log together with whether the member tree has
// changed since it was produced.
type Reloaded struct {
	Log   *ledger.Log
	Stale bool
}

// Reload loads a stored log by id. The log is returned exactly as stored;
// Stale reports whether the current member snapshot differs from the one
// the log was computed against.
func (s *Service) Reload(ctx context.Context, id string) (*Reloaded, error) {
	l, err := s.logs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadMembers, err)
	}
	stale := l.MemberDigest != "" && l.MemberDigest != ledger.Digest(members)
	if stale {
		s.log.Debug("member tree changed since log", zap.String("id", id))
	}
	return &Reloaded{Log: l, Stale: stale}, nil
}

// Logs returns every stored log, newest first.
func (s *Service) Logs(ctx context.Context) ([]*ledger.Log, error) {
	return s.logs.List(ctx)
}

// DeleteLog removes a stored log.
func (s *Service) DeleteLog(ctx context.Context, id string) error {
	if err := s.logs.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("settlement deleted", zap.String("id", id))
	return nil
}

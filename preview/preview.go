// Package preview keeps an applied transcription next to a proposed one, so
// option changes can be tried and then applied or thrown away.
package preview

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/jsphweid/midiscribe/transcribe"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoProposal    = errors.New("no pending proposal")
	ErrStaleProposal = errors.New("proposal was replaced")
)

const DefaultWait = 250 * time.Millisecond

type Snapshot struct {
	Ops    operations.Set
	Result *model.Result
}

type Proposal struct {
	ID     string
	Ops    operations.Set
	Result *model.Result
	Err    error
}

type Session struct {
	score *model.Score

	mu       sync.Mutex
	live     Snapshot
	proposal *Proposal
	// bumped on every Propose and Cancel, so late runs are discarded
	generation int

	debounced func(func())
}

// New transcribes score with ops and opens a session around the result.
func New(ctx context.Context, score *model.Score, ops operations.Set, wait time.Duration) (*Session, error) {
	res, err := transcribe.Run(ctx, score, ops)
	if err != nil {
		return nil, err
	}
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Session{
		score:     score,
		live:      Snapshot{Ops: ops.Clone(), Result: res},
		debounced: debounce.New(wait),
	}, nil
}

func (s *Session) Live() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Pending returns the current proposal, if any.
func (s *Session) Pending() (Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proposal == nil {
		return Proposal{}, false
	}
	return *s.proposal, true
}

// Propose re-runs the transcription with ops. A failed run still becomes the
// pending proposal so the caller can show why; it cannot be applied.
func (s *Session) Propose(ctx context.Context, ops operations.Set) (Proposal, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	p := s.run(ctx, ops)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return p, ErrStaleProposal
	}
	s.proposal = &p
	return p, p.Err
}

// ProposeDebounced coalesces rapid calls; only the last ops of a burst is run.
// done, when set, receives the resulting proposal.
func (s *Session) ProposeDebounced(ctx context.Context, ops operations.Set, done func(Proposal, error)) {
	ops = ops.Clone()
	s.debounced(func() {
		p, err := s.Propose(ctx, ops)
		if err != nil {
			logrus.WithFields(logrus.Fields{"proposal": p.ID}).WithError(err).Debug("proposal not kept")
		}
		if done != nil {
			done(p, err)
		}
	})
}

func (s *Session) run(ctx context.Context, ops operations.Set) Proposal {
	p := Proposal{ID: uuid.NewString(), Ops: ops.Clone()}
	p.Result, p.Err = transcribe.Run(ctx, s.score, p.Ops)
	return p
}

// Apply makes the pending proposal live. id must name the pending proposal.
func (s *Session) Apply(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proposal == nil {
		return s.live, ErrNoProposal
	}
	if s.proposal.ID != id {
		return s.live, errors.Wrapf(ErrStaleProposal, "pending proposal is %s", s.proposal.ID)
	}
	if s.proposal.Err != nil {
		return s.live, errors.Wrap(s.proposal.Err, "cannot apply a failed proposal")
	}
	s.live = Snapshot{Ops: s.proposal.Ops, Result: s.proposal.Result}
	s.proposal = nil
	return s.live, nil
}

// Cancel drops the pending proposal and any run still in flight.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.proposal = nil
}

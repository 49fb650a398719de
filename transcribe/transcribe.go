// Package transcribe runs a score through the whole pipeline: normalize,
// quantize, split into staves and voices, find tuplets and cut measures.
package transcribe

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"github.com/jsphweid/midiscribe/meter"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/normalize"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/pkg/errors"
	"github.com/remeh/sizedwaitgroup"
	"github.com/sirupsen/logrus"
)

var ErrInvalidScore = errors.New("invalid score")

// Run transcribes every track of score. The meter is decided once for the
// whole score, then tracks are processed in parallel. Cancellation is checked
// before each track starts; a cancelled run returns ctx.Err() and no result.
func Run(ctx context.Context, score *model.Score, ops operations.Set) (*model.Result, error) {
	if score == nil || score.Division <= 0 {
		return nil, errors.Wrap(ErrInvalidScore, "missing score or division")
	}
	if err := ops.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	log := logrus.WithField("run", runID)

	events, diags, err := normalize.All(score.Tracks)
	if err != nil {
		return nil, err
	}
	decision, err := meter.Decide(score.Tracks, events, score.Division, ops)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"stage": "meter", "meter": decision.String()}).Debug("meter decided")

	bars := meter.NewBars(decision, score.Division)
	results := make([]model.TrackResult, len(score.Tracks))
	wg := sizedwaitgroup.New(runtime.NumCPU())
	for i := range score.Tracks {
		if ctx.Err() != nil {
			break
		}
		wg.Add()
		go func(i int) {
			defer wg.Done()
			p := pipeline{
				log:      log.WithField("track", score.Tracks[i].ID),
				division: score.Division,
				bars:     bars,
				ops:      ops,
			}
			results[i] = p.track(score.Tracks[i], events[i], diags[i])
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		log.WithError(err).Info("transcription cancelled")
		return nil, err
	}

	return &model.Result{
		RunID:    runID,
		Division: score.Division,
		Meter:    decision,
		Tracks:   results,
		Hints:    ops.Hints(),
	}, nil
}

// mustHold panics on a broken pipeline invariant.
func mustHold(err error) {
	if err != nil {
		panic(errors.WithStack(err))
	}
}

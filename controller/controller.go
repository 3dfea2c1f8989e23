// Package controller - This file contains the controller for routing canvas events to their handlers.
package controller

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nvr-ai/go-digits/sketch"
)

// handler processes one event. Only prediction handlers return an outcome.
type handler func(ctx context.Context, ev sketch.Event) *Outcome

// Controller owns a drawing session and routes events to handlers.
//
// It is not safe for concurrent use; the caller delivers events one at a
// time, as Bubble Tea does.
type Controller struct {
	session   sketch.Session
	predictor *Predictor
	handlers  map[sketch.EventKind]handler
	last      *Outcome
	logger    zerolog.Logger
}

// New creates a controller for session.
//
// Arguments:
//   - session: The initial drawing session.
//   - predictor: Runs predictions when requested.
//   - logger: Receives event traces.
//
// Returns:
//   - *Controller: The controller.
func New(session sketch.Session, predictor *Predictor, logger zerolog.Logger) *Controller {
	c := &Controller{
		session:   session,
		predictor: predictor,
		logger:    logger,
	}
	c.handlers = map[sketch.EventKind]handler{
		sketch.PointerDown:      c.stroke,
		sketch.PointerMove:      c.stroke,
		sketch.PointerUp:        c.stroke,
		sketch.ClearRequested:   c.clear,
		sketch.PredictRequested: c.predict,
	}
	return c
}

// Dispatch handles ev.
//
// Arguments:
//   - ctx: Passed to the classifier on prediction.
//   - ev: The event.
//
// Returns:
//   - *Outcome: The prediction outcome for PredictRequested, nil otherwise.
func (c *Controller) Dispatch(ctx context.Context, ev sketch.Event) *Outcome {
	h, ok := c.handlers[ev.Kind]
	if !ok {
		c.logger.Warn().Stringer("event", ev.Kind).Msg("no handler for event")
		return nil
	}
	return h(ctx, ev)
}

// Session returns the current session.
func (c *Controller) Session() sketch.Session {
	return c.session
}

// Last returns the most recent prediction outcome, nil after a clear.
func (c *Controller) Last() *Outcome {
	return c.last
}

func (c *Controller) stroke(_ context.Context, ev sketch.Event) *Outcome {
	c.session = sketch.Apply(c.session, ev)
	return nil
}

func (c *Controller) clear(_ context.Context, ev sketch.Event) *Outcome {
	c.session = sketch.Apply(c.session, ev)
	c.last = nil
	c.logger.Debug().Msg("canvas cleared")
	return nil
}

func (c *Controller) predict(ctx context.Context, _ sketch.Event) *Outcome {
	c.last = c.predictor.Predict(ctx, c.session)
	return c.last
}

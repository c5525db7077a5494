package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/intent"
	"github.com/nerrad567/hearth/internal/sensor"
)

// IntentRequest is what speech and gesture front ends submit. Exactly one
// of Text, Gesture or Kind is expected; Text wins over Gesture, which wins
// over Kind.
type IntentRequest struct {
	Text    string      `json:"text,omitempty"`
	Gesture string      `json:"gesture,omitempty"`
	Kind    intent.Kind `json:"kind,omitempty"`
	Param   string      `json:"param,omitempty"`
	Source  string      `json:"source,omitempty"`
}

// Resolve turns the request into an intent.
func (r IntentRequest) Resolve() (intent.Intent, error) {
	switch {
	case strings.TrimSpace(r.Text) != "":
		return intent.ParseUtterance(r.Text)
	case r.Gesture != "":
		g, err := intent.ParseGesture(r.Gesture)
		if err != nil {
			return intent.Intent{}, err
		}
		return intent.FromGesture(g)
	case r.Kind != "":
		return intent.Intent{Kind: r.Kind, Param: r.Param}, nil
	}
	return intent.Intent{}, fmt.Errorf("%w: empty request", intent.ErrNotRecognized)
}

// Reply answers one intent.
type Reply struct {
	Intent  intent.Intent `json:"intent"`
	Applied bool          `json:"applied"`
	Message string        `json:"message"`
}

// HandleIntent executes or answers i. Actions go through Submit, so they
// are subject to the same guards as any other command.
func (c *Controller) HandleIntent(ctx context.Context, i intent.Intent) (Reply, error) {
	reply := Reply{Intent: i}

	switch {
	case i.Kind == intent.Emergency:
		e, err := c.Emergency(ctx, emergency.ReasonManual, "requested by intent")
		if err != nil {
			return reply, err
		}
		reply.Applied = true
		reply.Message = e.Message()

	case i.Query():
		st := c.State()
		q := intent.State{Snapshot: st.Actuators, Reading: sensor.Nominal(), Energy: st.Energy}
		if st.Reading != nil {
			q.Reading = *st.Reading
		}
		msg, err := intent.Answer(i, q)
		if err != nil {
			return reply, err
		}
		reply.Applied = true
		reply.Message = msg

	default:
		cmd, err := i.Command(c.Snapshot())
		if err != nil {
			return reply, err
		}
		res, err := c.Submit(ctx, cmd)
		if err != nil {
			return reply, err
		}
		reply.Applied = res.Applied
		reply.Message = intent.Confirmation(i, res.Applied)
	}

	c.opts.Display.ShowStatus(reply.Message)
	return reply, nil
}

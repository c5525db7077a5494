package controller

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/infrastructure/mqtt"
)

// requestTimeout bounds how long an MQTT command or intent waits for the
// loop.
const requestTimeout = 10 * time.Second

// Broker is the MQTT surface the bridge needs. *mqtt.Client implements it.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	PublishJSON(topic string, v any, retained bool) error
}

// commandResult is published on the command result topic.
type commandResult struct {
	automation.Result
	Error string `json:"error,omitempty"`
}

type intentReply struct {
	Reply
	Error string `json:"error,omitempty"`
}

// MQTTBridge connects the controller to the broker. Commands and intents
// arrive on their topics; results, state and emergency events are
// published back. Broker publishes wait for an acknowledgement, so they
// never run on the loop goroutine.
type MQTTBridge struct {
	ctrl   *Controller
	broker Broker
	topics mqtt.Topics
	log    Logger

	latest chan State
	wg     sync.WaitGroup
}

// NewMQTTBridge creates a bridge. Call Start to subscribe.
func NewMQTTBridge(ctrl *Controller, broker Broker, logger Logger) *MQTTBridge {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTBridge{
		ctrl:   ctrl,
		broker: broker,
		log:    logger,
		latest: make(chan State, 1),
	}
}

// Start subscribes to the command and intent topics and publishes state
// changes until ctx is cancelled.
func (b *MQTTBridge) Start(ctx context.Context) error {
	if err := b.broker.Subscribe(b.topics.Command(), 1, b.handler(ctx, b.handleCommand)); err != nil {
		return err
	}
	if err := b.broker.Subscribe(b.topics.Intent(), 1, b.handler(ctx, b.handleIntent)); err != nil {
		return err
	}

	cancel := b.ctrl.Subscribe(b.OnState)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancel()
		b.publishLoop(ctx)
	}()
	return nil
}

// Wait blocks until the publishing goroutines have exited.
func (b *MQTTBridge) Wait() {
	b.wg.Wait()
}

// handler runs fn off the paho callback goroutine.
func (b *MQTTBridge) handler(ctx context.Context, fn func(context.Context, []byte)) mqtt.MessageHandler {
	return func(_ string, payload []byte) error {
		data := append([]byte(nil), payload...)
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
			defer cancel()
			fn(reqCtx, data)
		}()
		return nil
	}
}

func (b *MQTTBridge) handleCommand(ctx context.Context, payload []byte) {
	var out commandResult

	cmd, err := automation.ParseCommand(payload, automation.SourceMQTT)
	if err == nil {
		out.Result, err = b.ctrl.Submit(ctx, cmd)
	}
	if err != nil {
		out.CommandID = cmd.ID
		out.Type = cmd.Type
		out.Target = cmd.Target
		out.Error = err.Error()
		b.log.Warn("mqtt command rejected", "error", err)
	}

	if err := b.broker.PublishJSON(b.topics.CommandResult(), out, false); err != nil {
		b.log.Warn("publishing command result failed", "error", err)
	}
}

func (b *MQTTBridge) handleIntent(ctx context.Context, payload []byte) {
	var out intentReply

	var req IntentRequest
	err := json.Unmarshal(payload, &req)
	if err == nil {
		out.Intent, err = req.Resolve()
	}
	if err == nil {
		out.Reply, err = b.ctrl.HandleIntent(ctx, out.Intent)
	}
	if err != nil {
		out.Error = err.Error()
		b.log.Warn("mqtt intent rejected", "error", err)
	}

	if err := b.broker.PublishJSON(b.topics.IntentReply(), out, false); err != nil {
		b.log.Warn("publishing intent reply failed", "error", err)
	}
}

// OnState keeps only the newest state for the publisher. It never blocks,
// so it is safe as a controller listener.
func (b *MQTTBridge) OnState(st State) {
	for {
		select {
		case b.latest <- st:
			return
		default:
		}
		select {
		case <-b.latest:
		default:
		}
	}
}

func (b *MQTTBridge) publishLoop(ctx context.Context) {
	var lastModes string
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-b.latest:
			b.publishState(st, &lastModes)
		}
	}
}

func (b *MQTTBridge) publishState(st State, lastModes *string) {
	if err := b.broker.PublishJSON(b.topics.State(), st, true); err != nil {
		b.log.Warn("publishing state failed", "error", err)
		return
	}
	for d, on := range st.Actuators.Devices {
		payload := map[string]any{"active": on}
		if err := b.broker.PublishJSON(b.topics.DeviceState(string(d)), payload, true); err != nil {
			b.log.Warn("publishing device state failed", "device", string(d), "error", err)
		}
	}

	modes := st.Actuators.Modes.String()
	if modes == *lastModes {
		return
	}
	if err := b.broker.PublishJSON(b.topics.Mode(), st.Actuators.Modes, true); err != nil {
		b.log.Warn("publishing modes failed", "error", err)
		return
	}
	*lastModes = modes
}

// Notify publishes emergency events in the background. It implements
// emergency.Notifier and is called on the loop goroutine.
func (b *MQTTBridge) Notify(_ context.Context, e emergency.Event) error {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.publishEvent(e); err != nil {
			b.log.Warn("publishing emergency event failed", "kind", e.Kind, "error", err)
		}
	}()
	return nil
}

func (b *MQTTBridge) publishEvent(e emergency.Event) error {
	errEvent := b.broker.PublishJSON(b.topics.Emergency(), e, false)
	errAlert := b.broker.PublishJSON(b.topics.Alert(), map[string]any{
		"message": e.Message(),
		"at":      e.At,
	}, false)
	return errors.Join(errEvent, errAlert)
}

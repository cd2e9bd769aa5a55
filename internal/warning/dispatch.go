package warning

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/signalsfoundry/vision-status/internal/logging"
	"github.com/signalsfoundry/vision-status/internal/telemetry"
)

// MQTTDispatcher publishes warnings to a broker topic.
type MQTTDispatcher struct {
	client  mqtt.Client
	topic   string
	qos     byte
	codec   telemetry.Codec
	timeout time.Duration
}

// NewMQTTDispatcher publishes on topic through client, encoding with codec.
func NewMQTTDispatcher(client mqtt.Client, topic string, qos byte, codec telemetry.Codec) *MQTTDispatcher {
	if codec == nil {
		codec = telemetry.JSON
	}
	return &MQTTDispatcher{
		client:  client,
		topic:   topic,
		qos:     qos,
		codec:   codec,
		timeout: 2 * time.Second,
	}
}

// Dispatch implements Dispatcher.
func (d *MQTTDispatcher) Dispatch(ctx context.Context, w Warning) error {
	if d.client == nil || !d.client.IsConnected() {
		return fmt.Errorf("publish warning: mqtt not connected")
	}
	payload, err := d.codec.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode warning: %w", err)
	}

	token := d.client.Publish(d.topic, d.qos, false, payload)
	select {
	case <-token.Done():
	case <-time.After(d.timeout):
		return fmt.Errorf("publish warning: timeout after %s", d.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish warning: %w", err)
	}
	return nil
}

// LogDispatcher writes warnings to a logger. It stands in for the warning
// system when no broker is configured.
type LogDispatcher struct {
	Log logging.Logger
}

// Dispatch implements Dispatcher.
func (d LogDispatcher) Dispatch(ctx context.Context, w Warning) error {
	log := d.Log
	if log == nil {
		log = logging.Noop()
	}
	log.Info(ctx, "vision warning",
		logging.String("category", w.Category),
		logging.String("action", string(w.Action)),
		logging.String("type", w.Type),
		logging.String("reason", w.Reason),
	)
	return nil
}

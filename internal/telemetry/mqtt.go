package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/signalsfoundry/vision-status/internal/logging"
)

// ErrConnectTimeout is returned when the broker does not answer in time.
var ErrConnectTimeout = errors.New("mqtt connect timeout")

// MQTTConfig describes the broker the source subscribes to. Each channel is
// read from "<TopicPrefix>/<channel>".
type MQTTConfig struct {
	Broker         string
	ClientID       string
	TopicPrefix    string
	QoS            byte
	ConnectTimeout time.Duration
}

// MQTTSource is a Source backed by an MQTT broker. Subscriptions made before
// Connect are applied once the client connects, and are restored after every
// reconnect.
//
// When the broker connection drops, handlers of ChannelConnected receive a
// "false" payload so consumers stop trusting stale aircraft state.
type MQTTSource struct {
	cfg       MQTTConfig
	codec     Codec
	log       logging.Logger
	newClient func(*mqtt.ClientOptions) mqtt.Client

	mu       sync.RWMutex
	client   mqtt.Client
	handlers map[Channel][]Handler
	closed   bool
}

// MQTTOption customises an MQTTSource.
type MQTTOption func(*MQTTSource)

// WithMQTTCodec sets the codec used for the synthesised disconnect payload.
// It must match the codec used to bind the channels.
func WithMQTTCodec(c Codec) MQTTOption {
	return func(s *MQTTSource) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithMQTTLogger sets the source logger.
func WithMQTTLogger(l logging.Logger) MQTTOption {
	return func(s *MQTTSource) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClientFactory replaces mqtt.NewClient, mainly for tests.
func WithClientFactory(fn func(*mqtt.ClientOptions) mqtt.Client) MQTTOption {
	return func(s *MQTTSource) {
		if fn != nil {
			s.newClient = fn
		}
	}
}

// NewMQTTSource returns an unconnected source.
func NewMQTTSource(cfg MQTTConfig, opts ...MQTTOption) *MQTTSource {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	cfg.TopicPrefix = strings.TrimSuffix(cfg.TopicPrefix, "/")
	s := &MQTTSource{
		cfg:       cfg,
		codec:     JSON,
		log:       logging.Noop(),
		newClient: mqtt.NewClient,
		handlers:  make(map[Channel][]Handler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.log = s.log.With(logging.String("component", "mqtt_source"), logging.String("broker", cfg.Broker))
	return s
}

// Topic returns the broker topic for ch.
func (s *MQTTSource) Topic(ch Channel) string {
	if s.cfg.TopicPrefix == "" {
		return string(ch)
	}
	return s.cfg.TopicPrefix + "/" + string(ch)
}

// Client returns the underlying client once Connect has been called, so
// other publishers can share the connection.
func (s *MQTTSource) Client() mqtt.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// Subscribe implements Source.
func (s *MQTTSource) Subscribe(ch Channel, h Handler) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSourceClosed
	}
	first := len(s.handlers[ch]) == 0
	s.handlers[ch] = append(s.handlers[ch], h)
	client := s.client
	s.mu.Unlock()

	if first && client != nil && client.IsConnected() {
		return s.subscribeTopic(client, ch)
	}
	return nil
}

// Connect dials the broker and waits up to the configured timeout.
func (s *MQTTSource) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetOnConnectHandler(s.onConnect)
	opts.SetConnectionLostHandler(s.onConnectionLost)

	client := s.newClient(opts)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSourceClosed
	}
	s.client = client
	s.mu.Unlock()

	s.log.Info(ctx, "connecting to mqtt broker")
	token := client.Connect()
	select {
	case <-token.Done():
	case <-time.After(s.cfg.ConnectTimeout):
		return fmt.Errorf("%w after %s", ErrConnectTimeout, s.cfg.ConnectTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Close disconnects from the broker and drops every handler.
func (s *MQTTSource) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	client := s.client
	s.handlers = nil
	s.mu.Unlock()

	if client != nil && client.IsConnected() {
		client.Disconnect(250)
		s.log.Info(context.Background(), "mqtt disconnected")
	}
}

func (s *MQTTSource) onConnect(client mqtt.Client) {
	s.mu.RLock()
	subscribed := make([]Channel, 0, len(s.handlers))
	for ch := range s.handlers {
		subscribed = append(subscribed, ch)
	}
	s.mu.RUnlock()

	s.log.Info(context.Background(), "mqtt connection established", logging.Int("channels", len(subscribed)))
	for _, ch := range subscribed {
		if err := s.subscribeTopic(client, ch); err != nil {
			s.log.Error(context.Background(), "mqtt subscribe failed",
				logging.String("channel", string(ch)),
				logging.Err(err),
			)
		}
	}
}

func (s *MQTTSource) onConnectionLost(_ mqtt.Client, err error) {
	s.log.Warn(context.Background(), "mqtt connection lost, will auto-reconnect", logging.Err(err))

	payload, encErr := s.codec.Marshal(false)
	if encErr != nil {
		s.log.Error(context.Background(), "encode disconnect payload", logging.Err(encErr))
		return
	}
	s.dispatch(ChannelConnected, payload)
}

func (s *MQTTSource) subscribeTopic(client mqtt.Client, ch Channel) error {
	token := client.Subscribe(s.Topic(ch), s.cfg.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		s.dispatch(ch, msg.Payload())
	})
	if !token.WaitTimeout(s.cfg.ConnectTimeout) {
		return fmt.Errorf("subscribe %s: timeout", s.Topic(ch))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.Topic(ch), err)
	}
	return nil
}

func (s *MQTTSource) dispatch(ch Channel, payload []byte) {
	s.mu.RLock()
	handlers := s.handlers[ch]
	s.mu.RUnlock()
	for _, h := range handlers {
		h(payload)
	}
}

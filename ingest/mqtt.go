// Package ingest subscribes to sensor readings published over MQTT and
// appends them to sensor history.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"landslide-monitor/config"
	"landslide-monitor/metrics"
	"landslide-monitor/models"
	"landslide-monitor/services"
)

const handleTimeout = 10 * time.Second

// Appender stores one reading.
type Appender interface {
	AppendLog(ctx context.Context, in models.ReadingLog) (*models.SensorHistory, error)
}

// Subscriber feeds MQTT reading messages into an Appender.
type Subscriber struct {
	cfg      config.MQTTConfig
	appender Appender
	log      *zap.Logger
	metrics  *metrics.Metrics
	client   mqtt.Client
	ctx      context.Context
	now      func() time.Time
}

// NewSubscriber creates a subscriber. m may be nil.
func NewSubscriber(cfg config.MQTTConfig, appender Appender, log *zap.Logger, m *metrics.Metrics) *Subscriber {
	return &Subscriber{
		cfg:      cfg,
		appender: appender,
		log:      log.Named("mqtt"),
		metrics:  m,
		ctx:      context.Background(),
		now:      time.Now,
	}
}

// Start connects to the broker and subscribes. The subscription is renewed
// on every reconnect. Messages are handled until ctx is done or Stop is called.
func (s *Subscriber) Start(ctx context.Context) error {
	s.ctx = ctx

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
	}
	if s.cfg.Password != "" {
		opts.SetPassword(s.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.onMessage)
		if token.Wait() && token.Error() != nil {
			s.log.Error("failed to subscribe", zap.String("topic", s.cfg.Topic), zap.Error(token.Error()))
			return
		}
		s.log.Info("subscribed", zap.String("broker", s.cfg.Broker), zap.String("topic", s.cfg.Topic))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.log.Warn("connection lost", zap.Error(err))
	})

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

// Stop disconnects from the broker.
func (s *Subscriber) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

func (s *Subscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(s.ctx, handleTimeout)
	defer cancel()
	if err := s.HandleMessage(ctx, msg.Topic(), msg.Payload()); err != nil {
		s.log.Warn("reading rejected", zap.String("topic", msg.Topic()), zap.Error(err))
	}
}

// HandleMessage decodes one reading. The sensor id falls back to the second
// topic segment (sensors/<id>/readings) and recorded_at to the receive time.
func (s *Subscriber) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	var in models.ReadingLog
	if err := json.Unmarshal(payload, &in); err != nil {
		s.count("invalid")
		return fmt.Errorf("decode payload: %w", err)
	}
	if !in.SensorID.Present {
		if parts := strings.Split(topic, "/"); len(parts) > 1 {
			in.SensorID = models.ParseNumber(parts[1])
		}
	}
	if in.RecordedAt == nil {
		now := s.now().UTC().Format(time.RFC3339Nano)
		in.RecordedAt = &now
	}

	if _, err := s.appender.AppendLog(ctx, in); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			s.count("invalid")
		case errors.Is(err, services.ErrNotFound):
			s.count("unknown_sensor")
		default:
			s.count("error")
		}
		return err
	}
	s.count("stored")
	return nil
}

func (s *Subscriber) count(outcome string) {
	if s.metrics != nil {
		s.metrics.MQTTMessages.WithLabelValues(outcome).Inc()
	}
}

package runlog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/hive/infra/logger"
)

// MQTTConfig configures an MQTT run logger.
type MQTTConfig struct {
	Broker     string `json:"broker"`
	Topic      string `json:"topic"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	QoS        int    `json:"qos"`
	Retained   bool   `json:"retained"`
	MaxRetries int    `json:"max_retries"`
	BackoffMS  int    `json:"backoff_ms"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Message is the JSON payload published for each log call.
type Message struct {
	Prefix    string             `json:"prefix,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
	Timestamp int64              `json:"timestamp"`
}

// MQTT publishes scalars as JSON messages on <topic>/<prefix>.
type MQTT struct {
	cli        pahoClient
	topic      string
	qos        byte
	retained   bool
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
	log        logger.Logger
}

// NewMQTT connects to the broker.
func NewMQTT(cfg MQTTConfig) (*MQTT, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt logger: broker is required")
	}
	if cfg.QoS < 0 || cfg.QoS > 2 {
		return nil, fmt.Errorf("mqtt logger: qos must be 0, 1 or 2, got %d", cfg.QoS)
	}
	if cfg.Topic == "" {
		cfg.Topic = "hive/metrics"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "hive-" + uuid.NewString()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffMS <= 0 {
		cfg.BackoffMS = 100
	}
	log := logger.New("mqtt-runlog")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt logger: connect %s: %w", cfg.Broker, token.Error())
	}
	return &MQTT{
		cli:        c,
		topic:      strings.TrimSuffix(cfg.Topic, "/"),
		qos:        byte(cfg.QoS),
		retained:   cfg.Retained,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		now:        time.Now,
		log:        log,
	}, nil
}

func (m *MQTT) topicFor(prefix string) string {
	if prefix == "" {
		return m.topic
	}
	return m.topic + "/" + strings.ReplaceAll(prefix, ".", "/")
}

func (m *MQTT) publish(prefix string, metrics map[string]float64) error {
	payload, err := json.Marshal(Message{Prefix: prefix, Metrics: metrics, Timestamp: m.now().UnixMilli()})
	if err != nil {
		return err
	}
	topic := m.topicFor(prefix)
	var publishErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		token := m.cli.Publish(topic, m.qos, m.retained, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			return nil
		}
		m.log.Warnf("publish attempt %d on %s failed: %v", attempt+1, topic, publishErr)
		if attempt < m.maxRetries {
			time.Sleep(m.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

func (m *MQTT) LogScalar(name string, value float64, prefix string) error {
	return m.publish(prefix, map[string]float64{name: value})
}

func (m *MQTT) LogMetrics(metrics map[string]float64, prefix string) error {
	if len(metrics) == 0 {
		return nil
	}
	return m.publish(prefix, metrics)
}

func (m *MQTT) Close() error {
	if m.cli != nil && m.cli.IsConnected() {
		m.cli.Disconnect(250)
	}
	return nil
}

// Package notifier publishes operator actions (deploys, group edits, registrations) as MQTT events.
package notifier

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Config"
	logger "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Logger"
)

// Outcomes carried by an Event
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Event is one operator action
type Event struct {
	Action    string    `json:"action"`
	Target    string    `json:"target,omitempty"`
	Session   string    `json:"session,omitempty"`
	Outcome   string    `json:"outcome"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds an event for action on target; a non-nil err marks it failed
func NewEvent(action, target, session string, err error) Event {
	ev := Event{
		Action:    action,
		Target:    target,
		Session:   session,
		Outcome:   OutcomeSuccess,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		ev.Outcome = OutcomeError
		ev.Message = err.Error()
	}
	return ev
}

// Publisher sends events somewhere
type Publisher interface {
	Publish(ev Event) error
	Connected() bool
	Close()
}

// Nop drops every event; used when no broker is configured
type Nop struct{}

func (Nop) Publish(Event) error { return nil }
func (Nop) Connected() bool     { return true }
func (Nop) Close()              {}

// MQTTPublisher publishes events as JSON to <prefix>/<action>
type MQTTPublisher struct {
	client  mqtt.Client
	prefix  string
	timeout time.Duration
	logger  *logger.Logger
}

// Connect dials the broker described by cfg
func Connect(cfg config.EventsConfig, brokerURL string, log *logger.Logger) (*MQTTPublisher, error) {
	if log == nil {
		log = logger.NewNop()
	}
	opts, err := clientOptions(cfg, brokerURL, log)
	if err != nil {
		return nil, err
	}

	client := mqtt.NewClient(opts)
	if tk := client.Connect(); tk.WaitTimeout(10*time.Second) && tk.Error() != nil {
		return nil, fmt.Errorf("failed to connect to event broker: %w", tk.Error())
	}

	return NewMQTTPublisher(client, cfg.TopicPrefix, log), nil
}

func clientOptions(cfg config.EventsConfig, brokerURL string, log *logger.Logger) (*mqtt.ClientOptions, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(cfg.ClientID).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(true)

	if cfg.BrokerUser != "" {
		opts.SetUsername(cfg.BrokerUser)
		opts.SetPassword(cfg.BrokerPass)
	}

	if cfg.UseTLS {
		tlsCfg, err := tlsConfig(cfg.CACertPath)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Logger.Error().Err(err).Msg("Event broker connection lost")
	}
	opts.OnConnect = func(mqtt.Client) {
		log.Logger.Info().Str("broker", brokerURL).Msg("Event broker connected")
	}
	return opts, nil
}

// NewMQTTPublisher wraps an existing client
func NewMQTTPublisher(client mqtt.Client, prefix string, log *logger.Logger) *MQTTPublisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &MQTTPublisher{
		client:  client,
		prefix:  strings.TrimRight(prefix, "/"),
		timeout: 5 * time.Second,
		logger:  log,
	}
}

// Topic returns where an action is published
func (p *MQTTPublisher) Topic(action string) string {
	return p.prefix + "/" + strings.Trim(action, "/")
}

// Publish sends ev with QoS 1. Disconnected publishers drop the event.
func (p *MQTTPublisher) Publish(ev Event) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("event broker not connected")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	topic := p.Topic(ev.Action)
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Logger.Debug().Str("topic", topic).Str("outcome", ev.Outcome).Msg("Published event")
	return nil
}

func (p *MQTTPublisher) Connected() bool {
	return p.client.IsConnected()
}

func (p *MQTTPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(500)
	}
}

func tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}

package mqtt

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/smazurov/lightnode/internal/logging"
)

// ClientAPI is the surface the state publisher needs.
// It lets tests run without a live broker.
type ClientAPI interface {
	PublishWith(topic string, payload []byte, retain bool) error
	Close()
}

// newPahoClient is replaced in tests.
var newPahoClient = paho.NewClient

// Config holds broker connection settings.
type Config struct {
	// Broker is a URL such as mqtt://host:1883, tls://host:8883 or ws://host/mqtt.
	// Credentials may be embedded as user:pass@host.
	Broker   string
	ClientID string
	Timeout  time.Duration
}

// Client is a connected paho client.
type Client struct {
	cli     paho.Client
	timeout time.Duration
	logger  logging.Logger
}

// Connect dials the broker and waits for the session to be established.
func Connect(cfg Config) (*Client, error) {
	logger := logging.GetLogger("mqtt")

	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.OnConnect = func(paho.Client) { logger.Info("MQTT connected", "broker", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { logger.Error("MQTT connection lost", "error", err) }

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cli := newPahoClient(opts)
	t := cli.Connect()
	if !t.WaitTimeout(timeout) {
		cli.Disconnect(0)
		return nil, fmt.Errorf("connect to %s: timed out after %s", cfg.Broker, timeout)
	}
	if err := t.Error(); err != nil {
		cli.Disconnect(0)
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}
	return &Client{cli: cli, timeout: timeout, logger: logger}, nil
}

func clientOptions(cfg Config) (*paho.ClientOptions, error) {
	u, err := url.Parse(cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("invalid broker URL %q: %w", cfg.Broker, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid broker URL %q: missing host", cfg.Broker)
	}

	var server string
	switch u.Scheme {
	case "mqtt", "tcp":
		server = "tcp://" + u.Host
	case "ssl", "tls", "mqtts":
		server = "ssl://" + u.Host
	case "ws", "wss":
		server = u.Scheme + "://" + u.Host + u.Path
	default:
		return nil, fmt.Errorf("invalid broker URL %q: unsupported scheme %q", cfg.Broker, u.Scheme)
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(server)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "lightnode-" + time.Now().Format("150405.000")
	}
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(false)

	if u.User != nil {
		pw, _ := u.User.Password()
		opts.SetUsername(u.User.Username())
		opts.SetPassword(pw)
	}
	if u.Scheme == "ssl" || u.Scheme == "tls" || u.Scheme == "mqtts" || u.Scheme == "wss" {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	return opts, nil
}

// PublishWith publishes at QoS 1 and waits for the broker acknowledgement.
func (c *Client) PublishWith(topic string, payload []byte, retain bool) error {
	t := c.cli.Publish(topic, 1, retain, payload)
	if !t.WaitTimeout(c.timeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close flushes in-flight messages and disconnects.
func (c *Client) Close() {
	c.cli.Disconnect(250)
	c.logger.Debug("MQTT disconnected")
}

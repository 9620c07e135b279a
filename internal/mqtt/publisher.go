package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smazurov/lightnode/internal/devices"
	"github.com/smazurov/lightnode/internal/logging"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "lightnode"

// State is the retained payload published for each device.
type State struct {
	Name          string  `json:"name"`
	Path          string  `json:"path"`
	Brightness    int64   `json:"brightness"`
	MaxBrightness int64   `json:"max_brightness"`
	Percent       float64 `json:"percent"`
}

// StatePublisher publishes one retained state message per device.
type StatePublisher struct {
	client ClientAPI
	prefix string
	logger logging.Logger
}

// NewStatePublisher creates a publisher writing under prefix.
func NewStatePublisher(client ClientAPI, prefix string) *StatePublisher {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &StatePublisher{
		client: client,
		prefix: prefix,
		logger: logging.GetLogger("mqtt"),
	}
}

// StateTopic returns the topic for a device name.
// Wildcard characters are not allowed in published topics and become underscores.
func (p *StatePublisher) StateTopic(name string) string {
	return p.prefix + "/" + topicSafe.Replace(name) + "/state"
}

var topicSafe = strings.NewReplacer("+", "_", "#", "_", "/", "_")

// Publish sends every device in order. Devices sharing a name share a topic,
// so the later one is what the broker retains.
func (p *StatePublisher) Publish(devs []devices.Device) error {
	for _, d := range devs {
		payload, err := json.Marshal(State{
			Name:          d.Name,
			Path:          d.Path,
			Brightness:    d.Brightness,
			MaxBrightness: d.MaxBrightness,
			Percent:       d.Percent(),
		})
		if err != nil {
			return fmt.Errorf("encode state for %s: %w", d.Name, err)
		}

		topic := p.StateTopic(d.Name)
		if err := p.client.PublishWith(topic, payload, true); err != nil {
			return err
		}
		p.logger.Debug("Published device state", "topic", topic, "brightness", d.Brightness)
	}
	return nil
}

package cmd

import (
	"context"
	"errors"

	"github.com/smazurov/lightnode/internal/logging"
	"github.com/smazurov/lightnode/internal/mqtt"
	"github.com/spf13/cobra"
)

// connectMQTT is replaced in tests.
var connectMQTT = func(cfg mqtt.Config) (mqtt.ClientAPI, error) {
	return mqtt.Connect(cfg)
}

// CreatePublishCmd creates the publish command.
func CreatePublishCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish device state to an MQTT broker",
		Long: `Runs one scan and publishes each device as a retained JSON message ` +
			`to <topic-prefix>/<name>/state. Devices sharing a name share a topic.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Broker, "broker", opts.Broker, "Broker URL, e.g. mqtt://localhost:1883")
	cmd.Flags().StringVar(&opts.TopicPrefix, "topic-prefix", opts.TopicPrefix, "Topic prefix")
	cmd.Flags().StringVar(&opts.ClientID, "client-id", opts.ClientID, "MQTT client ID (random when empty)")
	return cmd
}

func runPublish(ctx context.Context, opts *Options) error {
	if opts.Broker == "" {
		return errors.New("no broker configured: set --broker or mqtt.broker")
	}

	// Scan first so a failed scan never touches the broker.
	res, err := scan(ctx, opts)
	if err != nil {
		return err
	}

	client, err := connectMQTT(mqtt.Config{Broker: opts.Broker, ClientID: opts.ClientID})
	if err != nil {
		return err
	}
	defer client.Close()

	if err := mqtt.NewStatePublisher(client, opts.TopicPrefix).Publish(res.devices); err != nil {
		return err
	}

	logging.GetLogger("mqtt").Info("Published device states", "devices", len(res.devices), "broker", opts.Broker)
	return nil
}

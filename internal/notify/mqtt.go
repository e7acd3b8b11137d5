package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Publisher is the part of mqtt.Client the MQTT sink needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes notifications as JSON, e.g. for mosque signage screens
// subscribed to the topic.
type MQTT struct {
	Client  Publisher
	Topic   string
	QoS     byte
	Timeout time.Duration
}

// NewMQTT wraps a connected publisher. Notifications go out with QoS 1.
func NewMQTT(client Publisher, topic string) *MQTT {
	return &MQTT{Client: client, Topic: topic, QoS: 1, Timeout: 5 * time.Second}
}

// ConnectMQTT dials broker (e.g. "tcp://localhost:1883") as clientID.
func ConnectMQTT(broker, clientID string, logger *zap.Logger) (mqtt.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		logger.Info("connected to MQTT broker", zap.String("broker", broker))
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

func (m *MQTT) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("mqtt notify: %w", err)
	}

	token := m.Client.Publish(m.Topic, m.QoS, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.Timeout):
		return fmt.Errorf("mqtt notify: publish to %s timed out", m.Topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt notify: publish to %s: %w", m.Topic, err)
	}
	return nil
}

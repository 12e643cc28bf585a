package report

import (
	"fmt"

	"github.com/nerrad567/nilmlab/internal/infrastructure/mqtt"
)

// jsonPublisher is the part of *mqtt.Client the publisher needs.
type jsonPublisher interface {
	PublishJSON(topic string, v any) error
	Topics() mqtt.Topics
}

// Publisher sends run summaries to the broker, retained per
// experiment and split.
type Publisher struct {
	client jsonPublisher
}

// NewPublisher returns a publisher over a connected client.
func NewPublisher(c *mqtt.Client) *Publisher {
	return &Publisher{client: c}
}

// Topic returns the topic s is published on.
func (p *Publisher) Topic(s Summary) string {
	return p.client.Topics().Summary(s.Experiment + "-" + s.Split)
}

// Publish sends s as JSON.
func (p *Publisher) Publish(s Summary) error {
	if err := p.client.PublishJSON(p.Topic(s), s); err != nil {
		return fmt.Errorf("report: publishing %s/%s: %w", s.Experiment, s.Split, err)
	}
	return nil
}

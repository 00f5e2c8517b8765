package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"pricescout/internal/domain"
)

// Publisher streams job progress snapshots to a Kafka topic, keyed by job id,
// so the surrounding admin system can follow job state live. Implements
// ports.ProgressSink; delivery failures are the caller's to log, progress is
// fire-and-forget.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("start progress producer: %w", err)
	}
	return &Publisher{producer: producer, topic: topic}, nil
}

func (p *Publisher) ReportProgress(_ context.Context, prog domain.JobProgress) error {
	data, err := json.Marshal(prog)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(prog.JobID),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish progress for job %s: %w", prog.JobID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}

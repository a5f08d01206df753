package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/metrics"
	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafkago.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type ResultPublisher struct {
	writer MessageWriter
	topic  string
	now    func() time.Time
}

func NewResultPublisher(writer MessageWriter, topic string) *ResultPublisher {
	if topic == "" {
		topic = PayrollResultCalculatedTopic
	}
	return &ResultPublisher{writer: writer, topic: topic, now: time.Now}
}

// NewWriter builds a writer that hashes keys so every event of one
// employee lands on the same partition.
func NewWriter(brokers []string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

func (p *ResultPublisher) PublishCalculated(ctx context.Context, result payroll.PayrollResult) error {
	payload, err := json.Marshal(PayrollResultCalculatedEvent{
		EventType:       PayrollResultCalculatedType,
		ResultID:        result.ID,
		CompanyID:       result.CompanyID,
		EmployeeID:      result.EmployeeID,
		PeriodID:        result.PeriodID,
		PeriodCode:      result.PeriodCode,
		RateVersion:     result.RateVersion,
		GrossSalary:     result.GrossSalary,
		TotalDeductions: result.TotalDeductions,
		NetSalary:       result.NetSalary,
		IncomeTax:       result.IncomeTax,
		CalculatedAt:    result.CalculatedAt,
		OccurredAt:      p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal payroll event: %w", err)
	}

	msg := kafkago.Message{
		Topic: p.topic,
		Key:   []byte(result.EmployeeID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(PayrollResultCalculatedType)},
			{Key: "aggregate_type", Value: []byte("payroll_result")},
		},
	}

	err = p.writer.WriteMessages(ctx, msg)
	metrics.ObserveEventPublished(p.topic, err)
	if err != nil {
		return fmt.Errorf("publish payroll event: %w", err)
	}
	return nil
}

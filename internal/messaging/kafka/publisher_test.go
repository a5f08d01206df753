package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafkago.Message
	err      error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestResultPublisher_PublishCalculated(t *testing.T) {
	w := &recordingWriter{}
	p := NewResultPublisher(w, "")
	p.now = func() time.Time { return time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC) }

	err := p.PublishCalculated(context.Background(), payroll.PayrollResult{
		ID:          "result-1",
		CompanyID:   "company-1",
		EmployeeID:  "emp-1",
		PeriodID:    "period-1",
		PeriodCode:  "2024-03",
		RateVersion: "2024.1",
		GrossSalary: decimal.NewFromInt(10000000),
		NetSalary:   decimal.NewFromInt(8975000),
	})
	require.NoError(t, err)

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, PayrollResultCalculatedTopic, msg.Topic)
	assert.Equal(t, "emp-1", string(msg.Key))
	require.NotEmpty(t, msg.Headers)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, PayrollResultCalculatedType, string(msg.Headers[0].Value))

	var event PayrollResultCalculatedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "result-1", event.ResultID)
	assert.True(t, event.NetSalary.Equal(decimal.NewFromInt(8975000)))
	assert.Equal(t, 2024, event.OccurredAt.Year())
}

func TestResultPublisher_WrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	p := NewResultPublisher(&recordingWriter{err: boom}, "custom.topic")

	err := p.PublishCalculated(context.Background(), payroll.PayrollResult{EmployeeID: "emp-1"})

	assert.ErrorIs(t, err, boom)
}

package producers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lms-payment-gateway/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDLQProducer_PublishToDLQ(t *testing.T) {
	ctx := context.Background()
	dlqTopic := "enrollment_grants_dlq"

	t.Run("wraps original message", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{logger: newTestLogger(), writer: mockWriter, dlqTopic: dlqTopic}

		original := []byte(`{"reference":"ref42"}`)
		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 || string(msgs[0].Key) != "ref42" {
				return false
			}
			var payload deadLetter
			if err := json.Unmarshal(msgs[0].Value, &payload); err != nil {
				return false
			}
			return payload.OriginalKey == "ref42" &&
				payload.OriginalValue == string(original) &&
				payload.DLQReason == "invalid_grant" &&
				payload.Timestamp != "" &&
				len(msgs[0].Headers) == 1 &&
				string(msgs[0].Headers[0].Value) == "invalid_grant"
		})).Return(nil).Once()

		require.NoError(t, producer.PublishToDLQ(ctx, "ref42", original, "invalid_grant"))
		mockWriter.AssertExpectations(t)
	})

	t.Run("writer error", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DLQProducer{logger: newTestLogger(), writer: mockWriter, dlqTopic: dlqTopic}
		writerErr := errors.New("kafka DLQ write error")

		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerErr).Once()

		err := producer.PublishToDLQ(ctx, "ref42", []byte("x"), "invalid_grant")
		assert.ErrorIs(t, err, writerErr)
		mockWriter.AssertExpectations(t)
	})

	t.Run("disabled", func(t *testing.T) {
		producer, err := NewDLQProducer(ctx, newTestLogger(), &config.KafkaConfig{})
		require.NoError(t, err)

		err = producer.PublishToDLQ(ctx, "ref42", []byte("x"), "invalid_grant")
		assert.ErrorIs(t, err, ErrDLQDisabled)
		assert.NoError(t, producer.Close())
	})
}

func TestDLQProducer_Close(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	producer := &DLQProducer{logger: newTestLogger(), writer: mockWriter, dlqTopic: "enrollment_grants_dlq"}

	mockWriter.On("Close").Return(nil).Once()
	require.NoError(t, producer.Close())
	mockWriter.AssertExpectations(t)
}

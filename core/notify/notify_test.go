// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamemakerclub/api-core/core"
	"github.com/gamemakerclub/api-core/core/logger"
)

type fakeWriter struct {
	messages []kafka.Message
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{}, nil
}

type failing struct{ calls int }

func (f *failing) Notify(ctx context.Context, resource string, operation core.Operation, payload []byte) error {
	f.calls++
	return errors.New("broker down")
}

func TestEnvelope(t *testing.T) {
	ctx := logger.ContextWithRequestID(context.Background(), "request-1")
	e := NewEnvelope(ctx, "project", core.OperationCreate, []byte(`{"id":"p1","name":"Game"}`))
	assert.Equal(t, "p1", e.ID)
	assert.Equal(t, "request-1", e.RequestID)
	assert.Equal(t, core.OperationCreate, e.Operation)

	e = NewEnvelope(context.Background(), "project", core.OperationDelete, nil)
	assert.Empty(t, e.ID)
	assert.Empty(t, e.RequestID)
}

func TestKafka(t *testing.T) {
	w := &fakeWriter{}
	k := &Kafka{writer: w}
	require.NoError(t, k.Notify(context.Background(), "atom", core.OperationUpdate, []byte(`{"id":"a1"}`)))
	require.Len(t, w.messages, 1)
	assert.Equal(t, []byte("a1"), w.messages[0].Key)

	var e Envelope
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &e))
	assert.Equal(t, "atom", e.Resource)
	assert.Equal(t, core.OperationUpdate, e.Operation)
	assert.JSONEq(t, `{"id":"a1"}`, string(e.Payload))

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestSQS(t *testing.T) {
	f := &fakeSQS{}
	s := &SQS{client: f, queueURL: "https://sqs.eu-central-1.amazonaws.com/1/changes"}
	require.NoError(t, s.Notify(context.Background(), "team", core.OperationDelete, []byte(`{"id":"t1"}`)))
	require.Len(t, f.inputs, 1)
	assert.Equal(t, s.queueURL, aws.ToString(f.inputs[0].QueueUrl))
	assert.Equal(t, "team", aws.ToString(f.inputs[0].MessageAttributes["resource"].StringValue))

	var e Envelope
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(f.inputs[0].MessageBody)), &e))
	assert.Equal(t, "t1", e.ID)
}

func TestMulti(t *testing.T) {
	w := &fakeWriter{}
	bad := &failing{}
	m := Multi{bad, Log{}, &Kafka{writer: w}}
	err := m.Notify(context.Background(), "user", core.OperationCreate, []byte(`{"id":"u1"}`))
	assert.EqualError(t, err, "broker down")
	assert.Equal(t, 1, bad.calls)
	assert.Len(t, w.messages, 1)

	assert.NoError(t, Multi{Log{}}.Notify(context.Background(), "user", core.OperationCreate, nil))
}

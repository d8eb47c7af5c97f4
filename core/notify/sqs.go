// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/goccy/go-json"

	"github.com/gamemakerclub/api-core/core"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQS publishes notifications to an AWS SQS queue
type SQS struct {
	client   sqsAPI
	queueURL string
}

var _ core.Notifier = (*SQS)(nil)

// NewSQS returns a notifier sending to the queue with the given URL
func NewSQS(cfg aws.Config, queueURL string) *SQS {
	return &SQS{client: sqs.NewFromConfig(cfg), queueURL: queueURL}
}

// Notify implements core.Notifier
func (s *SQS) Notify(ctx context.Context, resource string, operation core.Operation, payload []byte) error {
	body, err := json.Marshal(NewEnvelope(ctx, resource, operation, payload))
	if err != nil {
		return err
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"resource":  {DataType: aws.String("String"), StringValue: aws.String(resource)},
			"operation": {DataType: aws.String("String"), StringValue: aws.String(string(operation))},
		},
	})
	return err
}

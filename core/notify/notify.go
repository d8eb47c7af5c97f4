// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package notify publishes change notifications.

Every notifier implements core.Notifier. The message published for a change is
an Envelope in JSON, carrying the API JSON of the changed entity as payload
and the request ID of the request which caused the change.
*/
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"github.com/gamemakerclub/api-core/core"
	"github.com/gamemakerclub/api-core/core/logger"
)

// Envelope is the published message
type Envelope struct {
	Resource  string          `json:"resource"`
	Operation core.Operation  `json:"operation"`
	ID        string          `json:"id,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Identity  string          `json:"identity,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope creates the envelope for a change. The ID is taken from the
// payload if it has one.
func NewEnvelope(ctx context.Context, resource string, operation core.Operation, payload []byte) Envelope {
	e := Envelope{
		Resource:  resource,
		Operation: operation,
		RequestID: logger.RequestIDFromContext(ctx),
		Identity:  logger.IdentityFromContext(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	var object struct {
		ID string `json:"id"`
	}
	if len(payload) > 0 && json.Unmarshal(payload, &object) == nil {
		e.ID = object.ID
	}
	return e
}

// Log is a notifier which only logs changes. It is used when no broker is configured.
type Log struct{}

var _ core.Notifier = Log{}

// Notify implements core.Notifier
func (Log) Notify(ctx context.Context, resource string, operation core.Operation, payload []byte) error {
	e := NewEnvelope(ctx, resource, operation, payload)
	logger.FromContext(ctx).WithField("resource", resource).WithField("id", e.ID).Debugln("notify", operation)
	return nil
}

// Multi forwards notifications to all its notifiers
type Multi []core.Notifier

var _ core.Notifier = Multi{}

// Notify implements core.Notifier. All notifiers are called, the errors are joined.
func (m Multi) Notify(ctx context.Context, resource string, operation core.Operation, payload []byte) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, resource, operation, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

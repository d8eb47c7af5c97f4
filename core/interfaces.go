// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package core

import "context"

// Notifier is an interface to receive change notifications. The resource is
// one of "user", "team", "project" or "resource", the payload is the API JSON
// of the entity. For resources the variant is the "type" property of the payload.
type Notifier interface {
	Notify(ctx context.Context, resource string, operation Operation, payload []byte) error
}

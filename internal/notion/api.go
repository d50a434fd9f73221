// Package notion talks to the Notion REST API: creating pages from captured
// entries, discovering databases, and supplying bearer credentials.
package notion

import (
	"context"

	"github.com/kapturehq/kapture/internal/models"
)

// RemoteAPI is the delivery contract the sync engine depends on. It is
// at-least-once-callable: the engine does not deduplicate on the remote
// side, so a retried entry whose acknowledgment was lost may be created
// twice.
type RemoteAPI interface {
	// CreateRecord creates one record in the destination collection and
	// returns its remote identifier.
	CreateRecord(ctx context.Context, destinationID string, props models.Properties) (string, error)
}

// Authenticator supplies a valid bearer credential. Implementations are
// expected to handle storage and refresh themselves; callers only see a
// usable token or an error.
type Authenticator interface {
	Token(ctx context.Context) (string, error)
}

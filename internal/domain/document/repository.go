package document

import (
	"context"

	"smartbiz/internal/core/id"
)

// Filter narrows List by equality on the given fields. Nil fields match all.
type Filter struct {
	Type             *Type
	Status           *Status
	PartnerID        *id.ID
	LinkedDocumentID *id.ID
	// Search matches the document number (case-insensitive substring).
	Search string
	Limit  int
	Offset int
}

// Repository persists documents. Implementations must return clones so
// callers never share memory with stored state.
type Repository interface {
	// Insert stores a new document. The number must be unique per kind.
	Insert(ctx context.Context, doc Document) error

	// Replace overwrites a document by id, checking and incrementing Version.
	// Returns NOT_FOUND or CONCURRENT_MODIFICATION.
	Replace(ctx context.Context, doc Document) error

	// Delete removes a document. No cascade to linked documents.
	Delete(ctx context.Context, docID id.ID) error

	// Get returns the document with the id from either domain.
	Get(ctx context.Context, docID id.ID) (Document, error)

	// List returns documents of a domain ordered by date, newest first.
	List(ctx context.Context, domain Domain, filter Filter) ([]Document, error)
}

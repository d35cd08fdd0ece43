package records

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNoOwner is returned when a repository is requested without an owner.
var ErrNoOwner = errors.New("owner is required")

// Owner identifies the authenticated user whose records are being accessed.
// The zero Owner is never accepted by the engine.
type Owner struct {
	id primitive.ObjectID
}

// NewOwner parses a hex user id.
func NewOwner(hex string) (Owner, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return Owner{}, fmt.Errorf("parse owner id: %w", err)
	}
	if id.IsZero() {
		return Owner{}, ErrNoOwner
	}
	return Owner{id: id}, nil
}

// OwnerFromID wraps an existing user id.
func OwnerFromID(id primitive.ObjectID) Owner {
	return Owner{id: id}
}

func (o Owner) ID() primitive.ObjectID { return o.id }

func (o Owner) String() string { return o.id.Hex() }

func (o Owner) IsZero() bool { return o.id.IsZero() }

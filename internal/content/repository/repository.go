package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Record is satisfied by pointers to the content entities: the repository
// owns id assignment and needs to read and write it. Clone must return a
// deep enough copy that no slice is shared with the receiver.
type Record[T any] interface {
	*T
	GetID() int
	SetID(id int)
	Clone() *T
}

// Repository is the capability set shared by every collection of the
// content store. Ids are assigned sequentially starting at 1 and are never
// reused, even after Delete. List returns records in insertion order.
type Repository[T any] interface {
	Create(ctx context.Context, rec *T) (*T, error)
	Get(ctx context.Context, id int) (*T, error)
	List(ctx context.Context) ([]*T, error)
	Update(ctx context.Context, id int, mutate func(*T)) (*T, error)
	Delete(ctx context.Context, id int) (bool, error)
	// Truncate removes every record and restarts the id counter.
	Truncate(ctx context.Context) error
}

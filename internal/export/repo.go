package export

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "export not found" }

type Repo interface {
	Create(ctx context.Context, exp Export) error
	GetByID(ctx context.Context, userID, exportID string) (Export, error)
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

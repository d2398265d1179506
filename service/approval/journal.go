package approval

import (
	"context"
	"errors"

	"github.com/taskgate/taskgate/service/dao"
)

// Journal durably records every outstanding prompt before it becomes
// visible, so that a process restart can reconcile in-flight approvals
// instead of silently abandoning them. One entry exists per broadcast
// prompt until its response, timeout or cancellation is consumed.
type Journal struct {
	dao dao.Service[string, Request]
}

// NewJournal builds a journal on top of any request DAO.
func NewJournal(requestDAO dao.Service[string, Request]) *Journal {
	return &Journal{dao: requestDAO}
}

// Record persists a pending request. It must complete before the prompt is
// broadcast.
func (j *Journal) Record(ctx context.Context, request *Request) error {
	if request == nil || request.ID == "" {
		return errors.New("invalid request")
	}
	return j.dao.Save(ctx, request)
}

// Resolve removes a settled request. Resolving an unknown id is a no-op,
// matching the silent handling of stale responses.
func (j *Journal) Resolve(ctx context.Context, id string) error {
	err := j.dao.Delete(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		return nil
	}
	return err
}

// Pending lists every request recorded but not yet resolved.
func (j *Journal) Pending(ctx context.Context) ([]*Request, error) {
	return j.dao.List(ctx)
}

package approval

import (
	"context"
	"errors"

	"github.com/taskgate/taskgate/internal/clock"
	"github.com/taskgate/taskgate/internal/idgen"
	"github.com/taskgate/taskgate/service/dao"
	"github.com/taskgate/taskgate/service/dao/criteria"
)

// Permissions is the durable store of remembered decisions. The store is
// append-only: each decision becomes a fresh record and Lookup resolves the
// most recent one for a task type, so repeated decisions converge on the
// latest answer without rewriting history.
type Permissions interface {
	// List returns every stored record.
	List(ctx context.Context, parameters ...*dao.Parameter) ([]*Record, error)

	// Append stores a new decision for taskType and returns its key.
	Append(ctx context.Context, taskType string, approved, remember bool) (string, error)

	// Lookup returns the most recent record for taskType, or nil.
	Lookup(ctx context.Context, taskType string) (*Record, error)
}

type permissions struct {
	dao dao.Service[string, Record]
}

// NewPermissions builds a permission store on top of any record DAO.
func NewPermissions(recordDAO dao.Service[string, Record]) Permissions {
	return &permissions{dao: recordDAO}
}

func (p *permissions) List(ctx context.Context, parameters ...*dao.Parameter) ([]*Record, error) {
	records, err := p.dao.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(records))
	for _, record := range records {
		if criteria.FilterByTaskType(record.TaskType, parameters) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (p *permissions) Append(ctx context.Context, taskType string, approved, remember bool) (string, error) {
	if taskType == "" {
		return "", errors.New("task type cannot be empty")
	}
	record := &Record{
		ID:        idgen.New(),
		TaskType:  taskType,
		Approved:  approved,
		Remember:  remember,
		DecidedAt: clock.Now(),
	}
	if err := p.dao.Save(ctx, record); err != nil {
		return "", err
	}
	return record.ID, nil
}

func (p *permissions) Lookup(ctx context.Context, taskType string) (*Record, error) {
	records, err := p.dao.List(ctx)
	if err != nil {
		return nil, err
	}
	var latest *Record
	for _, record := range records {
		if record.TaskType != taskType {
			continue
		}
		if latest == nil || record.DecidedAt.After(latest.DecidedAt) ||
			(record.DecidedAt.Equal(latest.DecidedAt) && record.ID > latest.ID) {
			latest = record
		}
	}
	return latest, nil
}

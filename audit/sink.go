package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Sink receives the results of a run once the run has finished
type Sink interface {
	Record(ctx context.Context, tenantID string, dryRun bool, results []types.ActionResult) error
}

// DBSink stores results in the action_records table
type DBSink struct {
	DB *gorm.DB
}

func (s *DBSink) Record(ctx context.Context, tenantID string, dryRun bool, results []types.ActionResult) error {
	if len(results) == 0 {
		return nil
	}
	records := make([]types.ActionRecord, 0, len(results))
	for _, r := range results {
		records = append(records, NewRecord(tenantID, dryRun, r))
	}
	if err := s.DB.WithContext(ctx).Create(&records).Error; err != nil {
		return errors.Wrap(err, "DBSink:Create")
	}
	return nil
}

// NewRecord flattens a result into its database row
func NewRecord(tenantID string, dryRun bool, r types.ActionResult) types.ActionRecord {
	record := types.ActionRecord{
		ID:              uuid.NewString(),
		RunID:           r.RunID,
		Timestamp:       r.Timestamp.UTC(),
		TenantID:        tenantID,
		Action:          r.Action.String(),
		Status:          r.Status,
		Error:           r.PrimaryError,
		SecondaryStatus: string(r.Secondary),
		SecondaryError:  r.SecondaryError,
		NewName:         r.NewName,
		DryRun:          dryRun,
	}
	if r.Entity != nil {
		record.EntityType = types.EntityType(r.Entity)
		record.EntityID = r.Entity.EntityID()
		record.EntityName = r.Entity.EntityName()
	}
	return record
}

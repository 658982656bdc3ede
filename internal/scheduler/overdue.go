package scheduler

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
	"gorm.io/gorm"
)

var openStatuses = []invoicedomain.InvoiceStatus{
	invoicedomain.StatusPending,
	invoicedomain.StatusPartial,
}

// MarkOverdueJob moves open invoices whose due date fell before today (UTC)
// to overdue. Rows are claimed in id order, one batch per transaction.
func (s *Scheduler) MarkOverdueJob(ctx context.Context, run *jobRun) error {
	now := s.clock.Now().UTC()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var updated int64
		var claimed int
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var ids []snowflake.ID
			if err := tx.Model(&invoicedomain.Invoice{}).
				Where("status IN ? AND due_date IS NOT NULL AND due_date < ?", openStatuses, cutoff).
				Order("id ASC").
				Limit(s.cfg.BatchSize).
				Pluck("id", &ids).Error; err != nil {
				return err
			}
			claimed = len(ids)
			if claimed == 0 {
				return nil
			}

			result := tx.Model(&invoicedomain.Invoice{}).
				Where("id IN ? AND status IN ?", ids, openStatuses).
				Updates(map[string]any{
					"status":     invoicedomain.StatusOverdue,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			updated = result.RowsAffected
			return nil
		})
		if err != nil {
			return err
		}

		run.AddProcessed(updated)
		if claimed < s.cfg.BatchSize {
			return nil
		}
	}
}

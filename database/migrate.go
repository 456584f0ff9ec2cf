package database

import (
	"fmt"

	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/logger"

	"gorm.io/gorm"
)

// Columns AutoMigrate may have added to an existing table. New columns
// arrive as NULL and are rewritten to the zero value the models expect.
var (
	nullableTextColumns = []string{
		"owner", "date", "date_sort", "procedure_name", "role", "patient_id",
		"diagnosis", "category", "access", "closure_device", "notes",
	}
	nullableIntColumns = []string{"seq_id", "created_at"}
)

// backfill upgrades rows written by older schema versions in one
// transaction: NULL columns become empty, missing sort keys are derived from
// the display date and missing sequence numbers are assigned per owner.
func backfill(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, col := range nullableTextColumns {
			sql := fmt.Sprintf("UPDATE procedures SET %s = '' WHERE %s IS NULL", col, col)
			if err := tx.Exec(sql).Error; err != nil {
				return err
			}
		}
		for _, col := range nullableIntColumns {
			sql := fmt.Sprintf("UPDATE procedures SET %s = 0 WHERE %s IS NULL", col, col)
			if err := tx.Exec(sql).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("UPDATE users SET security_question = '' WHERE security_question IS NULL").Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE users SET security_answer = '' WHERE security_answer IS NULL").Error; err != nil {
			return err
		}

		if err := backfillSortKeys(tx); err != nil {
			return err
		}
		if err := backfillSeqIDs(tx); err != nil {
			return err
		}
		return ResequenceAll(tx)
	})
}

func backfillSortKeys(tx *gorm.DB) error {
	var rows []struct {
		Id   int
		Date string
	}
	err := tx.Model(&model.Procedure{}).
		Select("id, date").
		Where("date_sort = '' AND date <> ''").
		Find(&rows).Error
	if err != nil {
		return err
	}
	for _, r := range rows {
		key, err := logbook.ToSortKey(r.Date)
		if err != nil {
			logger.Warningf("procedure %d: cannot derive sort date from %q", r.Id, r.Date)
			continue
		}
		err = tx.Model(&model.Procedure{}).Where("id = ?", r.Id).Update("date_sort", key).Error
		if err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		logger.Infof("backfilled sort dates for %d procedures", len(rows))
	}
	return nil
}

// backfillSeqIDs numbers unnumbered rows after the owner's existing ones,
// in insertion order.
func backfillSeqIDs(tx *gorm.DB) error {
	var unnumbered []struct {
		Id    int
		Owner string
	}
	err := tx.Model(&model.Procedure{}).
		Select("id, owner").
		Where("seq_id = 0").
		Order("owner, id").
		Find(&unnumbered).Error
	if err != nil {
		return err
	}

	next := map[string]int{}
	for _, r := range unnumbered {
		seq, ok := next[r.Owner]
		if !ok {
			if seq, err = NextSeqID(tx, r.Owner); err != nil {
				return err
			}
		}
		err := tx.Model(&model.Procedure{}).Where("id = ?", r.Id).Update("seq_id", seq).Error
		if err != nil {
			return err
		}
		next[r.Owner] = seq + 1
	}
	if len(unnumbered) > 0 {
		logger.Infof("assigned sequence ids to %d procedures", len(unnumbered))
	}
	return nil
}

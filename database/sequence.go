package database

import (
	"github.com/oplog/oplog/database/model"

	"gorm.io/gorm"
)

// NextSeqID returns max(seq_id)+1 for owner, 1 for an owner without records.
// Call it inside the transaction that inserts the record.
func NextSeqID(tx *gorm.DB, owner string) (int, error) {
	var maxSeq int
	err := tx.Model(&model.Procedure{}).
		Where("owner = ?", owner).
		Select("COALESCE(MAX(seq_id), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

// Resequence renumbers the owner's records to 1..N keeping their relative
// order (by current seq_id, then insertion id). It must run in the same
// transaction as the delete that caused the gap. Renumbering in ascending
// order only ever moves a record to a lower free number.
func Resequence(tx *gorm.DB, owner string) error {
	var rows []struct {
		Id    int
		SeqId int
	}
	err := tx.Model(&model.Procedure{}).
		Select("id, seq_id").
		Where("owner = ?", owner).
		Order("seq_id ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return err
	}
	for i, r := range rows {
		want := i + 1
		if r.SeqId == want {
			continue
		}
		err := tx.Model(&model.Procedure{}).
			Where("id = ?", r.Id).
			Update("seq_id", want).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// owners returns every distinct owner that has records.
func owners(tx *gorm.DB) ([]string, error) {
	var out []string
	err := tx.Model(&model.Procedure{}).
		Distinct("owner").
		Where("owner IS NOT NULL AND owner <> ''").
		Order("owner").
		Pluck("owner", &out).Error
	return out, err
}

// ResequenceAll makes every owner's sequence dense.
func ResequenceAll(tx *gorm.DB) error {
	names, err := owners(tx)
	if err != nil {
		return err
	}
	for _, owner := range names {
		if err := Resequence(tx, owner); err != nil {
			return err
		}
	}
	return nil
}

package database

import (
	"path/filepath"
	"testing"

	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "oplog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB(db) })
	return db
}

func addProcedure(t *testing.T, db *gorm.DB, owner string, seq int, date string) *model.Procedure {
	t.Helper()
	key, err := logbook.ToSortKey(date)
	require.NoError(t, err)
	p := &model.Procedure{
		Owner:    owner,
		SeqId:    seq,
		DateSort: key,
		Entry: logbook.Entry{
			Date:          date,
			ProcedureName: "EVAR",
			Role:          logbook.OpRoleSurgeon,
			PatientID:     "P1",
			Diagnosis:     "AAA",
			Category:      logbook.CategoryOperation,
		},
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seqIDs(t *testing.T, db *gorm.DB, owner string) []int {
	t.Helper()
	var out []int
	require.NoError(t, db.Model(&model.Procedure{}).
		Where("owner = ?", owner).
		Order("seq_id").
		Pluck("seq_id", &out).Error)
	return out
}

func TestNextSeqID(t *testing.T) {
	db := newTestDB(t)

	next, err := NextSeqID(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	addProcedure(t, db, "alice", 1, "01.01.2024")
	addProcedure(t, db, "alice", 2, "02.01.2024")
	addProcedure(t, db, "bob", 1, "02.01.2024")

	next, err = NextSeqID(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestResequenceClosesGapsInOrder(t *testing.T) {
	db := newTestDB(t)
	first := addProcedure(t, db, "alice", 1, "01.01.2024")
	addProcedure(t, db, "alice", 3, "03.01.2024")
	last := addProcedure(t, db, "alice", 7, "07.01.2024")
	addProcedure(t, db, "bob", 4, "01.02.2024")

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Resequence(tx, "alice")
	}))

	assert.Equal(t, []int{1, 2, 3}, seqIDs(t, db, "alice"))
	assert.Equal(t, []int{4}, seqIDs(t, db, "bob"))

	var gotLast, gotFirst model.Procedure
	require.NoError(t, db.First(&gotLast, last.Id).Error)
	assert.Equal(t, 3, gotLast.SeqId)
	require.NoError(t, db.First(&gotFirst, first.Id).Error)
	assert.Equal(t, 1, gotFirst.SeqId)
}

func TestResequenceAll(t *testing.T) {
	db := newTestDB(t)
	addProcedure(t, db, "alice", 2, "01.01.2024")
	addProcedure(t, db, "bob", 5, "01.01.2024")
	addProcedure(t, db, "bob", 9, "01.01.2024")

	require.NoError(t, ResequenceAll(db))

	assert.Equal(t, []int{1}, seqIDs(t, db, "alice"))
	assert.Equal(t, []int{1, 2}, seqIDs(t, db, "bob"))
}

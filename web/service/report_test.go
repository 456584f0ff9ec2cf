package service

import (
	"testing"

	"github.com/oplog/oplog/logbook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportTableRedactsRoleForTutors(t *testing.T) {
	db := newTestDB(t)
	_, err := NewProcedureService(db).Insert(alice, entry("01.01.2024", "Fem-pop. P1 Bypass", logbook.CategoryOperation, "Assistent"))
	require.NoError(t, err)
	svc := NewReportService(db)

	own, err := svc.Table(alice, "", logbook.Filter{})
	require.NoError(t, err)
	assert.Equal(t, logbook.ResidentHeaders, own.Headers)
	require.Len(t, own.Rows, 1)
	assert.Equal(t, "Assistant", own.Rows[0][3])

	summary, err := svc.Table(tutor, "", logbook.Filter{})
	require.NoError(t, err)
	assert.Equal(t, logbook.TutorHeaders, summary.Headers)
	require.Len(t, summary.Rows, 1)
	assert.Equal(t, []string{"01.01.2024", "Fem-pop. P1 Bypass", "", "P-Fem-pop. P1 Bypass", "Operation", "alice"}, summary.Rows[0])

	_, err = svc.Table(tutor, logbook.ViewResident, logbook.Filter{})
	assert.ErrorIs(t, err, logbook.ErrForbidden)

	full, err := svc.Table(master, logbook.ViewResident, logbook.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "alice", summary.Rows[0][5])
	assert.Equal(t, "Assistant", full.Rows[0][3])
}

func TestReportTitle(t *testing.T) {
	svc := NewReportService(newTestDB(t))
	assert.Equal(t, "OP-Logbuch: alice", svc.Title(alice))
	assert.Equal(t, "OP-Logbuch: Übersicht", svc.Title(tutor))
}

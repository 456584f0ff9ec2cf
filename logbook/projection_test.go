package logbook

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func assistantRecord() Record {
	e := validEntry()
	e.Role = OpRoleAssistant
	e.Notes = "gut"
	return Record{SeqID: 3, Owner: "alice", Entry: e}
}

func TestTutorViewRedactsAssistantRole(t *testing.T) {
	r := assistantRecord()

	tutor := ViewTutor.Row(r)
	want := []string{"12.03.2023", "Crossover Bypass", "", "P-100", "Operation", "alice"}
	if diff := cmp.Diff(want, tutor); diff != "" {
		t.Errorf("tutor row mismatch (-want +got):\n%s", diff)
	}

	own := ViewResident.Row(r)
	assert.Equal(t, "Assistant", own[3])
	assert.Equal(t, "3", own[0])
	assert.Len(t, own, len(ResidentHeaders))

	// Projection is display-only.
	assert.Equal(t, OpRoleAssistant, r.Role)
}

func TestTutorViewKeepsSurgeon(t *testing.T) {
	r := assistantRecord()
	r.Role = OpRoleSurgeon
	assert.Equal(t, "Surgeon", ViewTutor.Row(r)[2])
}

func TestViewFor(t *testing.T) {
	assert.Equal(t, ViewResident, ViewFor(RoleResident))
	assert.Equal(t, ViewTutor, ViewFor(RoleTutor))
	assert.Equal(t, ViewTutor, ViewFor(RoleMaster))
}

func TestProjectHeaders(t *testing.T) {
	table := ViewTutor.Project([]Record{assistantRecord(), assistantRecord()})
	assert.Equal(t, TutorHeaders, table.Headers)
	assert.Len(t, table.Rows, 2)

	table.Headers[0] = "changed"
	assert.Equal(t, "Date", TutorHeaders[0])
}

func TestScopeOwner(t *testing.T) {
	assert.Equal(t, "bob", Actor{Name: "bob", Role: RoleResident}.ScopeOwner("alice"))
	assert.Equal(t, "alice", Actor{Name: "t", Role: RoleTutor}.ScopeOwner("alice"))
	assert.Equal(t, "", Actor{Name: "m", Role: RoleMaster}.ScopeOwner(""))
}

package logbook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEntry() Entry {
	return Entry{
		Date:          "12.03.2023",
		ProcedureName: "Crossover Bypass",
		Role:          OpRoleSurgeon,
		PatientID:     "P-100",
		Diagnosis:     "pAVK IIb",
		Category:      CategoryOperation,
	}
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Entry)
		field string
	}{
		{"date", func(e *Entry) { e.Date = "" }, "date"},
		{"procedure", func(e *Entry) { e.ProcedureName = " " }, "procedureName"},
		{"role", func(e *Entry) { e.Role = "" }, "role"},
		{"patient", func(e *Entry) { e.PatientID = "" }, "patientId"},
		{"diagnosis", func(e *Entry) { e.Diagnosis = "" }, "diagnosis"},
		{"category", func(e *Entry) { e.Category = "" }, "category"},
		{"bad date", func(e *Entry) { e.Date = "31.02.2023" }, "date"},
		{"bad role", func(e *Entry) { e.Role = "Zuschauer" }, "role"},
		{"bad category", func(e *Entry) { e.Category = "Therapie" }, "category"},
		{"intervention without access", func(e *Entry) { e.Category = CategoryIntervention }, "access"},
		{"puncture without device", func(e *Entry) {
			e.Category = CategoryIntervention
			e.Access = AccessPuncture
		}, "closureDevice"},
		{"unknown device", func(e *Entry) {
			e.Category = CategoryIntervention
			e.Access = AccessPuncture
			e.ClosureDevice = "Clip"
		}, "closureDevice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.edit(&e)
			_, _, err := Prepare(e)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestPrepareInvalidDateWrapsFormatError(t *testing.T) {
	e := validEntry()
	e.Date = "29.02.2021"
	_, _, err := Prepare(e)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestNormalizeClearsFieldsOutsideIntervention(t *testing.T) {
	for _, c := range []Category{CategoryOperation, CategoryProcedure} {
		e := validEntry()
		e.Category = c
		e.Access = AccessPuncture
		e.ClosureDevice = ClosureProGlide

		got, key, err := Prepare(e)
		require.NoError(t, err)
		assert.Equal(t, "2023-03-12", key)
		assert.Empty(t, got.Access)
		assert.Empty(t, got.ClosureDevice)
	}
}

func TestNormalizeOpenAccessClearsClosureDevice(t *testing.T) {
	e := validEntry()
	e.Category = "Intervention"
	e.Access = "Offen"
	e.ClosureDevice = "AngioSeal"

	got, _, err := Prepare(e)
	require.NoError(t, err)
	assert.Equal(t, AccessOpen, got.Access)
	assert.Empty(t, got.ClosureDevice)
}

func TestNormalizeGermanAliases(t *testing.T) {
	e := Entry{
		Date:          "1.4.2024",
		ProcedureName: " EVAR ",
		Role:          "Assistent",
		PatientID:     "7",
		Diagnosis:     "AAA",
		Category:      "intervention",
		Access:        "Punktion",
		ClosureDevice: "angioseal",
	}
	got, key, err := Prepare(e)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", key)
	assert.Equal(t, Entry{
		Date:          "01.04.2024",
		ProcedureName: "EVAR",
		Role:          OpRoleAssistant,
		PatientID:     "7",
		Diagnosis:     "AAA",
		Category:      CategoryIntervention,
		Access:        AccessPuncture,
		ClosureDevice: ClosureAngioSeal,
	}, got)

	c, ok := ParseCategory("Prozedur")
	assert.True(t, ok)
	assert.Equal(t, CategoryProcedure, c)
}

func TestPatchApply(t *testing.T) {
	notes := "revidiert"
	cat := CategoryProcedure
	p := Patch{Notes: &notes, Category: &cat}
	assert.False(t, p.IsEmpty())
	assert.True(t, Patch{}.IsEmpty())

	got := p.Apply(validEntry())
	assert.Equal(t, "revidiert", got.Notes)
	assert.Equal(t, CategoryProcedure, got.Category)
	assert.Equal(t, "P-100", got.PatientID)
}

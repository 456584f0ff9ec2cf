// Package logbook holds the domain rules of the surgical logbook: record
// fields and their enums, date handling, validation, the procedure catalog
// and the role-based projections used by listings and exports.
package logbook

import (
	"strings"
)

type Category string

const (
	CategoryOperation    Category = "Operation"
	CategoryIntervention Category = "Intervention"
	CategoryProcedure    Category = "Procedure"
)

// OpRole is the part a resident played in a procedure.
type OpRole string

const (
	OpRoleSurgeon   OpRole = "Surgeon"
	OpRoleAssistant OpRole = "Assistant"
)

type Access string

const (
	AccessPuncture Access = "Puncture"
	AccessOpen     Access = "Open"
)

type ClosureDevice string

const (
	ClosureAngioSeal ClosureDevice = "AngioSeal"
	ClosureProGlide  ClosureDevice = "ProGlide"
)

// Input spellings, including the German labels of the old logbook.
var (
	categoryAliases = map[string]Category{
		"operation":    CategoryOperation,
		"intervention": CategoryIntervention,
		"procedure":    CategoryProcedure,
		"prozedur":     CategoryProcedure,
	}
	opRoleAliases = map[string]OpRole{
		"surgeon":   OpRoleSurgeon,
		"operateur": OpRoleSurgeon,
		"assistant": OpRoleAssistant,
		"assistent": OpRoleAssistant,
	}
	accessAliases = map[string]Access{
		"puncture": AccessPuncture,
		"punktion": AccessPuncture,
		"open":     AccessOpen,
		"offen":    AccessOpen,
	}
	closureAliases = map[string]ClosureDevice{
		"angioseal": ClosureAngioSeal,
		"proglide":  ClosureProGlide,
	}
)

func aliasKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func ParseCategory(s string) (Category, bool) {
	c, ok := categoryAliases[aliasKey(s)]
	return c, ok
}

func ParseOpRole(s string) (OpRole, bool) {
	r, ok := opRoleAliases[aliasKey(s)]
	return r, ok
}

func ParseAccess(s string) (Access, bool) {
	a, ok := accessAliases[aliasKey(s)]
	return a, ok
}

func ParseClosureDevice(s string) (ClosureDevice, bool) {
	d, ok := closureAliases[aliasKey(s)]
	return d, ok
}

// Entry is the user-supplied part of a procedure record.
type Entry struct {
	Date          string        `json:"date" form:"date"`
	ProcedureName string        `json:"procedureName" form:"procedureName"`
	Role          OpRole        `json:"role" form:"role"`
	PatientID     string        `json:"patientId" form:"patientId"`
	Diagnosis     string        `json:"diagnosis" form:"diagnosis"`
	Category      Category      `json:"category" form:"category"`
	Access        Access        `json:"access" form:"access"`
	ClosureDevice ClosureDevice `json:"closureDevice" form:"closureDevice"`
	Notes         string        `json:"notes" form:"notes"`
}

// NeedsAccess reports whether the access field applies.
func (e Entry) NeedsAccess() bool {
	return e.Category == CategoryIntervention
}

// NeedsClosureDevice reports whether the closure device field applies.
func (e Entry) NeedsClosureDevice() bool {
	return e.Category == CategoryIntervention && e.Access == AccessPuncture
}

// Normalize trims text, canonicalizes enum spellings and clears the access
// and closure device whenever the category rules do not use them. Unknown
// enum values are kept so that Validate can report them.
func (e Entry) Normalize() Entry {
	e.Date = NormalizeDate(e.Date)
	e.ProcedureName = strings.TrimSpace(e.ProcedureName)
	e.PatientID = strings.TrimSpace(e.PatientID)
	e.Diagnosis = strings.TrimSpace(e.Diagnosis)
	e.Notes = strings.TrimSpace(e.Notes)

	if c, ok := ParseCategory(string(e.Category)); ok {
		e.Category = c
	} else {
		e.Category = Category(strings.TrimSpace(string(e.Category)))
	}
	if r, ok := ParseOpRole(string(e.Role)); ok {
		e.Role = r
	} else {
		e.Role = OpRole(strings.TrimSpace(string(e.Role)))
	}
	if a, ok := ParseAccess(string(e.Access)); ok {
		e.Access = a
	} else {
		e.Access = Access(strings.TrimSpace(string(e.Access)))
	}
	if d, ok := ParseClosureDevice(string(e.ClosureDevice)); ok {
		e.ClosureDevice = d
	} else {
		e.ClosureDevice = ClosureDevice(strings.TrimSpace(string(e.ClosureDevice)))
	}

	if !e.NeedsAccess() {
		e.Access = ""
	}
	if !e.NeedsClosureDevice() {
		e.ClosureDevice = ""
	}
	return e
}

// Validate checks required fields and enum values of a normalized entry.
func (e Entry) Validate() error {
	switch {
	case e.Date == "":
		return missing("date")
	case e.ProcedureName == "":
		return missing("procedureName")
	case e.Role == "":
		return missing("role")
	case e.PatientID == "":
		return missing("patientId")
	case e.Diagnosis == "":
		return missing("diagnosis")
	case e.Category == "":
		return missing("category")
	}

	if _, err := ParseDate(e.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "expected DD.MM.YYYY", Err: err}
	}
	if _, ok := ParseOpRole(string(e.Role)); !ok {
		return unknownValue("role", string(e.Role))
	}
	if _, ok := ParseCategory(string(e.Category)); !ok {
		return unknownValue("category", string(e.Category))
	}

	if e.NeedsAccess() {
		if e.Access == "" {
			return missing("access")
		}
		if _, ok := ParseAccess(string(e.Access)); !ok {
			return unknownValue("access", string(e.Access))
		}
	}
	if e.NeedsClosureDevice() {
		if e.ClosureDevice == "" {
			return missing("closureDevice")
		}
		if _, ok := ParseClosureDevice(string(e.ClosureDevice)); !ok {
			return unknownValue("closureDevice", string(e.ClosureDevice))
		}
	}
	return nil
}

// Prepare normalizes and validates e and returns it with its sort key.
func Prepare(e Entry) (Entry, string, error) {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return e, "", err
	}
	key, err := ToSortKey(e.Date)
	if err != nil {
		return e, "", err
	}
	return e, key, nil
}

// Patch is a partial update of an entry; nil fields are left alone.
type Patch struct {
	Date          *string        `json:"date"`
	ProcedureName *string        `json:"procedureName"`
	Role          *OpRole        `json:"role"`
	PatientID     *string        `json:"patientId"`
	Diagnosis     *string        `json:"diagnosis"`
	Category      *Category      `json:"category"`
	Access        *Access        `json:"access"`
	ClosureDevice *ClosureDevice `json:"closureDevice"`
	Notes         *string        `json:"notes"`
}

func (p Patch) IsEmpty() bool {
	return p.Date == nil && p.ProcedureName == nil && p.Role == nil && p.PatientID == nil &&
		p.Diagnosis == nil && p.Category == nil && p.Access == nil && p.ClosureDevice == nil && p.Notes == nil
}

// Apply returns e with the patched fields replaced.
func (p Patch) Apply(e Entry) Entry {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.ProcedureName != nil {
		e.ProcedureName = *p.ProcedureName
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.PatientID != nil {
		e.PatientID = *p.PatientID
	}
	if p.Diagnosis != nil {
		e.Diagnosis = *p.Diagnosis
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Access != nil {
		e.Access = *p.Access
	}
	if p.ClosureDevice != nil {
		e.ClosureDevice = *p.ClosureDevice
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	return e
}

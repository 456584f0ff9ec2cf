package logbook

import "strconv"

// View selects the columns and redaction applied to listed records.
type View string

const (
	// ViewResident is the owner's full table.
	ViewResident View = "resident"
	// ViewTutor is the cross-user summary table used by tutors and masters.
	ViewTutor View = "tutor"
)

var (
	ResidentHeaders = []string{"SeqId", "Date", "Procedure", "Role", "Patient", "Diagnosis", "Category", "Access", "ClosureDevice", "Notes"}
	TutorHeaders    = []string{"Date", "Procedure", "Role", "Patient", "Category", "Owner"}
)

// ViewFor returns the view a role reads records through.
func ViewFor(r Role) View {
	if r.SeesAll() {
		return ViewTutor
	}
	return ViewResident
}

func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewResident:
		return ViewResident, true
	case ViewTutor:
		return ViewTutor, true
	}
	return "", false
}

// Record is an entry together with its owner and per-owner sequence id.
type Record struct {
	SeqID int
	Owner string
	Entry
}

// Table is a projected listing ready for display or export.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// RedactRole hides everything but Surgeon in tutor-facing tables so that
// a resident's assistant entries are not singled out. It never touches the
// stored value.
func RedactRole(r OpRole) string {
	if r == OpRoleSurgeon {
		return string(r)
	}
	return ""
}

func (v View) Headers() []string {
	if v == ViewTutor {
		return append([]string(nil), TutorHeaders...)
	}
	return append([]string(nil), ResidentHeaders...)
}

// Row projects one record.
func (v View) Row(r Record) []string {
	if v == ViewTutor {
		return []string{
			r.Date,
			r.ProcedureName,
			RedactRole(r.Role),
			r.PatientID,
			string(r.Category),
			r.Owner,
		}
	}
	return []string{
		strconv.Itoa(r.SeqID),
		r.Date,
		r.ProcedureName,
		string(r.Role),
		r.PatientID,
		r.Diagnosis,
		string(r.Category),
		string(r.Access),
		string(r.ClosureDevice),
		r.Notes,
	}
}

// Project builds the table of records as seen through v.
func (v View) Project(records []Record) Table {
	t := Table{Headers: v.Headers(), Rows: make([][]string, 0, len(records))}
	for _, r := range records {
		t.Rows = append(t.Rows, v.Row(r))
	}
	return t
}

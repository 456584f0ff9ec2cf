package service

import (
	"fmt"

	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"

	"gorm.io/gorm"
)

// ReportService builds the projected tables behind listings and exports.
type ReportService struct {
	procedures *ProcedureService
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{procedures: NewProcedureService(db)}
}

// Table lists the records visible to actor through view. An empty view
// picks the one that belongs to the actor's role. Tutors only ever get the
// redacted view.
func (s *ReportService) Table(actor logbook.Actor, view logbook.View, f logbook.Filter) (logbook.Table, error) {
	if view == "" {
		view = logbook.ViewFor(actor.Role)
	}
	if view == logbook.ViewResident && actor.Role == logbook.RoleTutor {
		return logbook.Table{}, logbook.ErrForbidden
	}
	records, err := s.procedures.List(actor, f)
	if err != nil {
		return logbook.Table{}, err
	}
	return view.Project(model.Records(records)), nil
}

// Title is the heading printed above an exported table.
func (s *ReportService) Title(actor logbook.Actor) string {
	if actor.Role.SeesAll() {
		return "OP-Logbuch: Übersicht"
	}
	return fmt.Sprintf("OP-Logbuch: %s", actor.Name)
}

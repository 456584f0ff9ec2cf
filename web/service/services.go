package service

import (
	"gorm.io/gorm"
)

// Services bundles the services of one store for the controllers and the CLI.
type Services struct {
	Users      *UserService
	UserAdmin  *UserAdminService
	Procedures *ProcedureService
	Stats      *StatsService
	Reports    *ReportService
}

func NewServices(db *gorm.DB, tutorPassphrase, masterTOTP string) *Services {
	return &Services{
		Users:      NewUserService(db, tutorPassphrase, masterTOTP),
		UserAdmin:  NewUserAdminService(db),
		Procedures: NewProcedureService(db),
		Stats:      NewStatsService(db),
		Reports:    NewReportService(db),
	}
}

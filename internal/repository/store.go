package repository

import "github.com/modbuild/pulse/internal/db"

// Store bundles every record repository over one DBTX, so the same set can
// be built over the shared *sql.DB or a transaction.
type Store struct {
	Factories      FactoryRepo
	Members        TeamMemberRepo
	Projects       ProjectRepo
	WorkItems      WorkItemRepo
	Stations       StationRepo
	Workers        WorkerRepo
	Shifts         ShiftRepo
	Assignments    AssignmentRepo
	Modules        ModuleRepo
	Takt           TaktRepo
	QC             QCRepo
	Certifications CertificationRepo
	Quotes         QuoteRepo
}

func NewStore(conn db.DBTX) *Store {
	return &Store{
		Factories:      NewSQLiteFactoryRepo(conn),
		Members:        NewSQLiteTeamMemberRepo(conn),
		Projects:       NewSQLiteProjectRepo(conn),
		WorkItems:      NewSQLiteWorkItemRepo(conn),
		Stations:       NewSQLiteStationRepo(conn),
		Workers:        NewSQLiteWorkerRepo(conn),
		Shifts:         NewSQLiteShiftRepo(conn),
		Assignments:    NewSQLiteAssignmentRepo(conn),
		Modules:        NewSQLiteModuleRepo(conn),
		Takt:           NewSQLiteTaktRepo(conn),
		QC:             NewSQLiteQCRepo(conn),
		Certifications: NewSQLiteCertificationRepo(conn),
		Quotes:         NewSQLiteQuoteRepo(conn),
	}
}

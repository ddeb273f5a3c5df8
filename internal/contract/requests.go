package contract

import (
	"errors"
	"time"
)

// Every request accepts an optional Now so callers and tests can pin the
// clock; nil means the current wall-clock time.

type HealthRequest struct {
	Now       *time.Time
	ProjectID string
}

func (r HealthRequest) Validate() error {
	if r.ProjectID == "" {
		return errors.New("project id is required")
	}
	return nil
}

// PortfolioRequest scopes a health overview. PMID narrows to one project
// manager's projects; IncludeBackup also counts projects they back up.
type PortfolioRequest struct {
	Now             *time.Time
	FactoryCode     string
	PMID            string
	IncludeBackup   bool
	IncludeInactive bool
}

func NewPortfolioRequest() PortfolioRequest {
	return PortfolioRequest{}
}

type OEERequest struct {
	FactoryID string
	From      time.Time
	To        time.Time
}

// NewOEERequest covers the last days calendar days ending today.
func NewOEERequest(factoryID string, now time.Time, days int) OEERequest {
	if days <= 0 {
		days = 7
	}
	y, m, d := now.Date()
	to := time.Date(y, m, d, 23, 59, 59, 0, now.Location())
	from := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
	return OEERequest{FactoryID: factoryID, From: from, To: to}
}

func (r OEERequest) Validate() error {
	if r.FactoryID == "" {
		return errors.New("factory is required")
	}
	if r.To.Before(r.From) {
		return errors.New("range end is before range start")
	}
	return nil
}

type DefectRequest struct {
	Now       *time.Time
	FactoryID string
	StationID string
	From      *time.Time
	To        *time.Time
}

type UtilizationRequest struct {
	Now       *time.Time
	FactoryID string
	Date      time.Time
}

func (r UtilizationRequest) Validate() error {
	if r.FactoryID == "" {
		return errors.New("factory is required")
	}
	if r.Date.IsZero() {
		return errors.New("date is required")
	}
	return nil
}

type CrossTrainingRequest struct {
	Now                *time.Time
	FactoryID          string
	ExpiringWithinDays int
}

func NewCrossTrainingRequest(factoryID string) CrossTrainingRequest {
	return CrossTrainingRequest{FactoryID: factoryID, ExpiringWithinDays: 30}
}

type LoadBoardRequest struct {
	Now       *time.Time
	FactoryID string
}

// CapacityRequest scores every active team member. IncludeBackupProjects is
// a caller preference and is never read from ambient state.
type CapacityRequest struct {
	Now                   *time.Time
	IncludeBackupProjects bool
}

type PipelineRequest struct {
	Now         *time.Time
	FactoryCode string
}

// ResolveNow returns *now or the current UTC time.
func ResolveNow(now *time.Time) time.Time {
	if now != nil {
		return *now
	}
	return time.Now().UTC()
}

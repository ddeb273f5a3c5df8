package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Project struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	Name          string          `json:"name"`
	Status        ProjectStatus   `json:"status"`
	DeliveryDate  *time.Time      `json:"delivery_date"`
	ContractValue decimal.Decimal `json:"contract_value"`
	FactoryCode   string          `json:"factory_code"`
	PrimaryPMID   *string         `json:"primary_pm_id"`
	BackupPMID    *string         `json:"backup_pm_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsClosed reports whether the project no longer counts toward a PM's
// active workload.
func (p *Project) IsClosed() bool {
	switch p.Status {
	case ProjectCompleted, ProjectCancelled, ProjectWarranty:
		return true
	}
	return false
}

// DisplayID returns the project number when present, otherwise a truncated ID.
func (p *Project) DisplayID() string {
	if p.Number != "" {
		return p.Number
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}

// ManagedBy reports whether the member is primary PM, or backup PM when
// includeBackup is set.
func (p *Project) ManagedBy(memberID string, includeBackup bool) bool {
	if p.PrimaryPMID != nil && *p.PrimaryPMID == memberID {
		return true
	}
	return includeBackup && p.BackupPMID != nil && *p.BackupPMID == memberID
}

// ProjectRef is the slice of a project embedded into related records.
type ProjectRef struct {
	ID          string  `json:"id"`
	Number      string  `json:"number"`
	Name        string  `json:"name"`
	PrimaryPMID *string `json:"primary_pm_id"`
}

type TeamMember struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

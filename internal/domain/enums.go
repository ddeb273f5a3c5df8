package domain

type HealthState string

const (
	HealthOnTrack  HealthState = "on_track"
	HealthAtRisk   HealthState = "at_risk"
	HealthCritical HealthState = "critical"
)

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "Planning"
	ProjectPrePM      ProjectStatus = "Pre-PM"
	ProjectPMHandoff  ProjectStatus = "PM Handoff"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectOnHold     ProjectStatus = "On Hold"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectCancelled  ProjectStatus = "Cancelled"
	ProjectWarranty   ProjectStatus = "Warranty"
)

// ValidProjectStatuses is the canonical set of accepted project status strings.
var ValidProjectStatuses = map[ProjectStatus]bool{
	ProjectPlanning: true, ProjectPrePM: true, ProjectPMHandoff: true,
	ProjectInProgress: true, ProjectOnHold: true, ProjectCompleted: true,
	ProjectCancelled: true, ProjectWarranty: true,
}

type WorkItemKind string

const (
	KindTask      WorkItemKind = "task"
	KindRFI       WorkItemKind = "rfi"
	KindSubmittal WorkItemKind = "submittal"
)

// Work item statuses. Tasks, RFIs and submittals share a status column but
// each kind has its own vocabulary.
const (
	TaskNotStarted = "Not Started"
	TaskInProgress = "In Progress"
	TaskBlocked    = "Blocked"
	TaskCompleted  = "Completed"
	TaskCancelled  = "Cancelled"

	RFIOpen     = "Open"
	RFIPending  = "Pending"
	RFIAnswered = "Answered"
	RFIClosed   = "Closed"

	SubmittalPending         = "Pending"
	SubmittalSubmitted       = "Submitted"
	SubmittalUnderReview     = "Under Review"
	SubmittalApproved        = "Approved"
	SubmittalApprovedAsNoted = "Approved as Noted"
	SubmittalRevise          = "Revise and Resubmit"
	SubmittalRejected        = "Rejected"
)

type CertificationLevel string

const (
	LevelBasic        CertificationLevel = "Basic"
	LevelIntermediate CertificationLevel = "Intermediate"
	LevelExpert       CertificationLevel = "Expert"
)

// Rank orders certification levels; unknown levels rank below Basic.
func (l CertificationLevel) Rank() int {
	switch l {
	case LevelExpert:
		return 3
	case LevelIntermediate:
		return 2
	case LevelBasic:
		return 1
	default:
		return 0
	}
}

type ModuleStatus string

const (
	ModuleNotStarted ModuleStatus = "Not Started"
	ModuleInQueue    ModuleStatus = "In Queue"
	ModuleInProgress ModuleStatus = "In Progress"
	ModuleQCHold     ModuleStatus = "QC Hold"
	ModuleCompleted  ModuleStatus = "Completed"
	ModuleShipped    ModuleStatus = "Shipped"
)

// InFlightModuleStatuses are the statuses shown on the load board.
var InFlightModuleStatuses = []ModuleStatus{ModuleInQueue, ModuleInProgress, ModuleQCHold}

type QuoteStatus string

const (
	QuoteDraft       QuoteStatus = "draft"
	QuoteSent        QuoteStatus = "sent"
	QuoteNegotiating QuoteStatus = "negotiating"
	QuoteAwaitingPO  QuoteStatus = "awaiting_po"
	QuotePOReceived  QuoteStatus = "po_received"
	QuoteWon         QuoteStatus = "won"
	QuoteLost        QuoteStatus = "lost"
	QuoteExpired     QuoteStatus = "expired"
	QuoteConverted   QuoteStatus = "converted"
)

// ActiveQuoteStatuses are the statuses that count toward pipeline value.
var ActiveQuoteStatuses = []QuoteStatus{
	QuoteDraft, QuoteSent, QuoteNegotiating, QuoteAwaitingPO, QuotePOReceived,
}

// IsActive reports whether the quote is still in the open pipeline.
func (s QuoteStatus) IsActive() bool {
	for _, a := range ActiveQuoteStatuses {
		if s == a {
			return true
		}
	}
	return false
}

type CapacityLabel string

const (
	CapacityAvailable  CapacityLabel = "Available"
	CapacityBusy       CapacityLabel = "Busy"
	CapacityOverloaded CapacityLabel = "Overloaded"
)

type PaceStatus string

const (
	PaceOnTrack PaceStatus = "on_track"
	PaceBehind  PaceStatus = "behind"
	PaceAtRisk  PaceStatus = "at_risk"
)

type UtilizationStatus string

const (
	UtilActive UtilizationStatus = "active"
	UtilIdle   UtilizationStatus = "idle"
)

// BuildingCategoryCustom is the category that carries a longer expected
// rework duration.
const BuildingCategoryCustom = "custom"

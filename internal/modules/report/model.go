// README: Report aggregate, status workflow and repository contract.
package report

import (
	"context"
	"time"

	"kavach/internal/types"
)

type Status string

const (
	StatusPending       Status = "pending"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
	StatusRejected      Status = "rejected"
)

// OpenStatuses block station deletion.
var OpenStatuses = []Status{StatusPending, StatusInvestigating, StatusResolved}

// AllowedTransitions represents the report workflow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPending:       {StatusInvestigating, StatusRejected, StatusClosed},
	StatusInvestigating: {StatusResolved, StatusRejected, StatusClosed},
	StatusResolved:      {StatusClosed, StatusInvestigating},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInvestigating, StatusResolved, StatusClosed, StatusRejected:
		return true
	}
	return false
}

var statusMessages = map[Status]string{
	StatusPending:       "Report marked as pending.",
	StatusInvestigating: "Investigation has started on this report.",
	StatusResolved:      "This report has been resolved.",
	StatusClosed:        "This case has been closed.",
	StatusRejected:      "This report has been rejected.",
}

const (
	submittedMessage = "Report submitted."
	editedMessage    = "Report details updated by the reporter."
)

// Priority is the triage outcome.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Report struct {
	ID            types.ID    `json:"id" firestore:"-"`
	Title         string      `json:"title" firestore:"title"`
	Description   string      `json:"description" firestore:"description"`
	CrimeType     string      `json:"crimeType" firestore:"crimeType"`
	Location      types.Point `json:"location" firestore:"location"`
	Address       string      `json:"address,omitempty" firestore:"address"`
	District      string      `json:"district" firestore:"district"`
	OccurredAt    time.Time   `json:"timestamp" firestore:"timestamp"`
	ReporterID    types.ID    `json:"reporterId,omitempty" firestore:"reporterId"`
	StationID     *types.ID   `json:"stationId" firestore:"stationId"`
	Status        Status      `json:"status" firestore:"status"`
	StatusVersion int         `json:"-" firestore:"statusVersion"`
	IsUrgent      bool        `json:"isUrgent" firestore:"isUrgent"`
	IsAnonymous   bool        `json:"isAnonymous" firestore:"isAnonymous"`
	Priority      Priority    `json:"priority,omitempty" firestore:"priority"`
	Cell          string      `json:"cell,omitempty" firestore:"cell"`
	CreatedAt     time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

// Update is one entry of a report's timeline. Notes, edits and
// reassignments keep FromStatus equal to ToStatus.
type Update struct {
	ID         string    `json:"id" firestore:"-"`
	ReportID   types.ID  `json:"reportId" firestore:"reportId"`
	Kind       string    `json:"kind" firestore:"kind"`
	FromStatus Status    `json:"fromStatus,omitempty" firestore:"fromStatus"`
	ToStatus   Status    `json:"toStatus" firestore:"toStatus"`
	Message    string    `json:"message" firestore:"message"`
	ActorType  string    `json:"actorType" firestore:"actorType"`
	ActorID    *types.ID `json:"actorId,omitempty" firestore:"actorId"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}

const (
	KindStatus   = "status"
	KindNote     = "note"
	KindEdit     = "edit"
	KindReassign = "reassign"
)

const (
	ActorSystem     = "system"
	ActorReporter   = "reporter"
	ActorAdmin      = "admin"
	ActorSuperadmin = "superadmin"
)

// EditableStatus is the only status in which the reporter may edit or
// withdraw a report.
const EditableStatus = StatusPending

// Details are the fields a reporter may change after submission.
type Details struct {
	CrimeType   string
	Description string
	OccurredAt  time.Time
}

// ListFilter selects reports ordered newest first. Zero fields do not filter.
type ListFilter struct {
	ReporterID types.ID
	StationID  types.ID
	District   string
	Status     Status
	CrimeType  string
	Since      time.Time
	Limit      int
}

// RecentFilter is the nearby-search fetch.
type RecentFilter struct {
	Since     time.Time
	CrimeType string
	Limit     int
}

type Repository interface {
	Create(ctx context.Context, r *Report) error
	Get(ctx context.Context, id types.ID) (*Report, error)
	List(ctx context.Context, f ListFilter) ([]Report, error)
	ListRecent(ctx context.Context, f RecentFilter) ([]Report, error)
	// UpdateStatus applies the change only if status and version still match.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, at time.Time) (bool, error)
	UpdateStation(ctx context.Context, id types.ID, stationID types.ID, at time.Time) error
	// UpdateDetails and Delete apply only while the report is still in status.
	UpdateDetails(ctx context.Context, id types.ID, status Status, d Details, at time.Time) (bool, error)
	Delete(ctx context.Context, id types.ID, status Status) (bool, error)
	AppendUpdate(ctx context.Context, u *Update) error
	ListUpdates(ctx context.Context, reportID types.ID) ([]Update, error)
	HasOpenByStation(ctx context.Context, stationID types.ID) (bool, error)
}

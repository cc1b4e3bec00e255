package approval

import (
	"fmt"
	"time"

	"campus-events/internal/common/apperror"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Model names bound through the tenant router
const (
	ModelFlow     = "ApprovalFlow"
	ModelInstance = "ApprovalInstance"
)

// Recognized criterion keys
const (
	CriterionLocation     = "location"
	CriterionMinAttendees = "minAttendees"
)

var (
	ErrInstanceNotFound = fmt.Errorf("approval instance %w", apperror.ErrNotFound)
	// ErrStepNotFound means the instance exists but its step list does not cover the current index
	ErrStepNotFound      = fmt.Errorf("approval step %w", apperror.ErrNotFound)
	ErrCommentNotFound   = fmt.Errorf("comment %w", apperror.ErrNotFound)
	ErrParentNotFound    = fmt.Errorf("parent comment %w", apperror.ErrNotFound)
	ErrStepConflict      = fmt.Errorf("approval step was already decided: %w", apperror.ErrConflict)
	ErrApprovalCompleted = fmt.Errorf("approval is already complete: %w", apperror.ErrConflict)
	ErrApprovalRejected  = fmt.Errorf("approval was rejected: %w", apperror.ErrConflict)
)

// FlowStep maps event criteria onto the role that must approve
type FlowStep struct {
	Role     string         `bson:"role" json:"role"`
	Criteria map[string]any `bson:"criteria" json:"criteria"` // e.g. {"location": "Gym"} or {"minAttendees": 100}
}

// FlowDefinition is the tenant-wide approval rule set (one per tenant)
type FlowDefinition struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Steps     []FlowStep         `bson:"steps" json:"steps"`
	UpdatedBy string             `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// EventAttributes are the event fields the criteria look at
type EventAttributes struct {
	Location           string `json:"location"`
	ExpectedAttendance int    `json:"expected_attendance"`
}

type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
)

// Step is one required sign-off inside an instance
type Step struct {
	Role             string     `bson:"role" json:"role"`
	Status           StepStatus `bson:"status" json:"status"`
	ApprovedByUserID string     `bson:"approved_by_user_id,omitempty" json:"approved_by_user_id,omitempty"`
	ApprovedAt       *time.Time `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	RejectedByUserID string     `bson:"rejected_by_user_id,omitempty" json:"rejected_by_user_id,omitempty"`
	RejectedAt       *time.Time `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
	Reason           string     `bson:"reason,omitempty" json:"reason,omitempty"`
}

type Comment struct {
	ID              primitive.ObjectID  `bson:"_id" json:"id"`
	UserID          string              `bson:"user_id" json:"user_id"`
	Text            string              `bson:"text" json:"text"`
	ParentCommentID *primitive.ObjectID `bson:"parent_comment_id" json:"parent_comment_id"`
	CreatedAt       time.Time           `bson:"created_at" json:"created_at"`
}

// Instance is the persisted approval progress of one event
type Instance struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID          primitive.ObjectID `bson:"event_id" json:"event_id"`
	Approvals        []Step             `bson:"approvals" json:"approvals"`
	CurrentStepIndex int                `bson:"current_step_index" json:"current_step_index"`
	Comments         []Comment          `bson:"comments" json:"comments"` // Newest first
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// Complete reports whether every step has been approved
func (i *Instance) Complete() bool {
	return i.CurrentStepIndex == len(i.Approvals)
}

// Rejected reports whether the current step was rejected
func (i *Instance) Rejected() bool {
	step, ok := i.CurrentStep()
	return ok && step.Status == StepRejected
}

// CurrentStep returns the step awaiting a decision
func (i *Instance) CurrentStep() (Step, bool) {
	if i.CurrentStepIndex < 0 || i.CurrentStepIndex >= len(i.Approvals) {
		return Step{}, false
	}
	return i.Approvals[i.CurrentStepIndex], true
}

// Status is the display state derived from the steps
func (i *Instance) Status() StepStatus {
	switch {
	case i.Rejected():
		return StepRejected
	case i.Complete():
		return StepApproved
	default:
		return StepPending
	}
}

func (i *Instance) findComment(id primitive.ObjectID) (Comment, bool) {
	for _, c := range i.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

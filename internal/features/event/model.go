package event

import (
	"fmt"
	"time"

	"campus-events/internal/common/apperror"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ModelEvent = "Event"

// Event statuses. Pending and not-applicable are set at creation; approved and
// rejected follow the approval instance.
const (
	StatusPending       = "pending"
	StatusNotApplicable = "not-applicable"
	StatusApproved      = "approved"
	StatusRejected      = "rejected"
)

var ErrEventNotFound = fmt.Errorf("event %w", apperror.ErrNotFound)

type Event struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title              string              `bson:"title" json:"title"`
	Description        string              `bson:"description,omitempty" json:"description,omitempty"`
	Location           string              `bson:"location" json:"location"`
	ExpectedAttendance int                 `bson:"expected_attendance" json:"expected_attendance"`
	StartTime          time.Time           `bson:"start_time" json:"start_time"`
	EndTime            time.Time           `bson:"end_time" json:"end_time"`
	Status             string              `bson:"status" json:"status"`
	ApprovalReference  *primitive.ObjectID `bson:"approval_reference,omitempty" json:"approval_reference,omitempty"`
	CreatedBy          string              `bson:"created_by" json:"created_by"`
	CreatedAt          time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time           `bson:"updated_at" json:"updated_at"`
}

// CreateEventInput is the request body for creating an event
type CreateEventInput struct {
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Location           string    `json:"location"`
	ExpectedAttendance int       `json:"expected_attendance"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
}

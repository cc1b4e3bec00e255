package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-events/internal/common/apperror"
	"campus-events/internal/features/approval"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ApprovalTrigger creates the approval instance for a new event, and discards
// it again when the event itself could not be stored
type ApprovalTrigger interface {
	CreateInstance(ctx context.Context, eventID string, attrs approval.EventAttributes) (*approval.Instance, error)
	DiscardInstance(ctx context.Context, eventID string) error
}

type EventService interface {
	Create(ctx context.Context, input CreateEventInput, userID string) (*Event, error)
	Get(ctx context.Context, id string) (*Event, error)
}

type EventServiceImpl struct {
	Repo      EventRepository
	Approvals ApprovalTrigger
	Logger    *zap.Logger
}

func NewEventService(repo EventRepository, approvals ApprovalTrigger, logger *zap.Logger) EventService {
	return &EventServiceImpl{
		Repo:      repo,
		Approvals: approvals,
		Logger:    logger,
	}
}

// Create derives the approval instance for a new event id, then stores the
// event once with its final status: pending plus the instance reference when
// approvals are required, not-applicable otherwise.
func (s *EventServiceImpl) Create(ctx context.Context, input CreateEventInput, userID string) (*Event, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalid)
	}
	if input.ExpectedAttendance < 0 {
		return nil, fmt.Errorf("expected attendance cannot be negative: %w", apperror.ErrInvalid)
	}
	if !input.EndTime.IsZero() && input.EndTime.Before(input.StartTime) {
		return nil, fmt.Errorf("event ends before it starts: %w", apperror.ErrInvalid)
	}

	now := time.Now()
	ev := &Event{
		ID:                 primitive.NewObjectID(),
		Title:              input.Title,
		Description:        input.Description,
		Location:           input.Location,
		ExpectedAttendance: input.ExpectedAttendance,
		StartTime:          input.StartTime,
		EndTime:            input.EndTime,
		Status:             StatusNotApplicable,
		CreatedBy:          userID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	instance, err := s.Approvals.CreateInstance(ctx, ev.ID.Hex(), approval.EventAttributes{
		Location:           ev.Location,
		ExpectedAttendance: ev.ExpectedAttendance,
	})
	if err != nil {
		return nil, err
	}
	if instance != nil {
		ev.Status = StatusPending
		ev.ApprovalReference = &instance.ID
	}

	if err := s.Repo.Create(ctx, ev); err != nil {
		if instance != nil {
			if discardErr := s.Approvals.DiscardInstance(ctx, ev.ID.Hex()); discardErr != nil {
				s.Logger.Error("Failed to discard approval instance after event insert failed",
					zap.String("event_id", ev.ID.Hex()), zap.Error(discardErr))
			}
		}
		return nil, err
	}

	s.Logger.Info("Event created",
		zap.String("event_id", ev.ID.Hex()),
		zap.String("status", ev.Status),
	)
	return ev, nil
}

func (s *EventServiceImpl) Get(ctx context.Context, id string) (*Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", id, apperror.ErrInvalid)
	}
	return s.Repo.FindByID(ctx, oid)
}

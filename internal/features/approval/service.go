package approval

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"campus-events/internal/common/apperror"
	common_models "campus-events/internal/common/models"
	"campus-events/internal/config"
	"campus-events/internal/features/audit"
	"campus-events/internal/metrics"
	"campus-events/internal/tenant"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ApprovalService interface {
	GetFlow(ctx context.Context) (*FlowDefinition, error)
	SaveFlow(ctx context.Context, steps []FlowStep, actorID string) (*FlowDefinition, error)

	// CreateInstance returns nil when the event needs no approval
	CreateInstance(ctx context.Context, eventID string, attrs EventAttributes) (*Instance, error)
	// DiscardInstance removes the instance of an event that was never stored
	DiscardInstance(ctx context.Context, eventID string) error
	GetInstance(ctx context.Context, eventID string) (*Instance, error)

	Approve(ctx context.Context, eventID, userID string, roles []string) (*Instance, error)
	Reject(ctx context.Context, eventID, userID string, roles []string, reason string) (*Instance, error)

	AddComment(ctx context.Context, eventID, userID, text, parentCommentID string) (*Comment, error)
	// RemoveComment is allowed to the comment's author and to AdminRole holders
	RemoveComment(ctx context.Context, eventID, commentID, userID string, roles []string) error
}

// EventStatusUpdater is implemented by the event collaborator. The instance is
// the source of truth; this only keeps the event's display status in step.
type EventStatusUpdater interface {
	SetApprovalStatus(ctx context.Context, eventID primitive.ObjectID, status StepStatus) error
}

// Notifier fans approval changes out to connected clients of a tenant
type Notifier interface {
	Publish(tenantID string, payload any)
}

// Update is the payload published for every approval change
type Update struct {
	Type             string     `json:"type"`
	EventID          string     `json:"event_id"`
	CurrentStepIndex int        `json:"current_step_index"`
	Status           StepStatus `json:"status"`
	ActorID          string     `json:"actor_id,omitempty"`
	At               time.Time  `json:"at"`
}

type ApprovalServiceImpl struct {
	Repo         ApprovalRepository
	Events       EventStatusUpdater
	AuditService audit.AuditService
	Notifier     Notifier
	Logger       *zap.Logger
	DedupeRoles  bool
	AdminRole    string

	now    func() time.Time
	record func(action, outcome string)
}

func NewApprovalService(
	repo ApprovalRepository,
	events EventStatusUpdater,
	auditService audit.AuditService,
	notifier Notifier,
	logger *zap.Logger,
	cfg *config.Config,
) ApprovalService {
	return &ApprovalServiceImpl{
		Repo:         repo,
		Events:       events,
		AuditService: auditService,
		Notifier:     notifier,
		Logger:       logger,
		DedupeRoles:  cfg.DedupeApprovalRoles,
		AdminRole:    cfg.AdminRole,
		now:          time.Now,
		record:       metrics.RecordApprovalTransition,
	}
}

func (s *ApprovalServiceImpl) GetFlow(ctx context.Context) (*FlowDefinition, error) {
	flow, err := s.Repo.FindFlow(ctx)
	if err != nil {
		return nil, err
	}
	if flow == nil {
		return &FlowDefinition{Steps: []FlowStep{}}, nil
	}
	return flow, nil
}

func (s *ApprovalServiceImpl) SaveFlow(ctx context.Context, steps []FlowStep, actorID string) (*FlowDefinition, error) {
	for i, step := range steps {
		if strings.TrimSpace(step.Role) == "" {
			return nil, fmt.Errorf("step %d: role is required: %w", i+1, apperror.ErrInvalid)
		}
		if len(step.Criteria) == 0 {
			return nil, fmt.Errorf("step %d: at least one criterion is required: %w", i+1, apperror.ErrInvalid)
		}
		for key := range step.Criteria {
			if key != CriterionLocation && key != CriterionMinAttendees {
				s.Logger.Warn("Flow step has a criterion that is never evaluated",
					zap.Int("step", i+1), zap.String("criterion", key))
			}
		}
	}

	old, err := s.Repo.FindFlow(ctx)
	if err != nil {
		return nil, err
	}
	saved, err := s.Repo.SaveFlow(ctx, &FlowDefinition{Steps: steps, UpdatedBy: actorID})
	if err != nil {
		return nil, err
	}

	var oldSteps []FlowStep
	if old != nil {
		oldSteps = old.Steps
	}
	s.audit(ctx, actorID, common_models.AuditActionFlow, ModelFlow, saved.ID.Hex(), map[string]common_models.Change{
		"steps": {Old: oldSteps, New: saved.Steps},
	})
	return saved, nil
}

func (s *ApprovalServiceImpl) CreateInstance(ctx context.Context, eventID string, attrs EventAttributes) (*Instance, error) {
	eventOID, err := parseID("event", eventID)
	if err != nil {
		return nil, err
	}

	flow, err := s.Repo.FindFlow(ctx)
	if err != nil {
		return nil, err
	}

	roles := RequiredRoles(flow, attrs)
	if s.DedupeRoles {
		roles = DedupeRoles(roles)
	}
	if len(roles) == 0 {
		return nil, nil
	}

	now := s.now()
	steps := make([]Step, len(roles))
	for i, role := range roles {
		steps[i] = Step{Role: role, Status: StepPending}
	}
	instance := &Instance{
		EventID:          eventOID,
		Approvals:        steps,
		CurrentStepIndex: 0,
		Comments:         []Comment{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repo.Create(ctx, instance); err != nil {
		return nil, err
	}

	s.audit(ctx, "", common_models.AuditActionCreate, ModelInstance, instance.ID.Hex(), map[string]common_models.Change{
		"approvals": {Old: nil, New: roles},
	})
	s.publish(ctx, "approval.created", instance, "")
	return instance, nil
}

func (s *ApprovalServiceImpl) DiscardInstance(ctx context.Context, eventID string) error {
	eventOID, err := parseID("event", eventID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteByEventID(ctx, eventOID); err != nil {
		return err
	}

	s.Logger.Warn("Approval instance discarded", zap.String("event_id", eventID))
	s.audit(ctx, "", common_models.AuditActionDiscard, ModelInstance, eventID, nil)
	return nil
}

func (s *ApprovalServiceImpl) GetInstance(ctx context.Context, eventID string) (*Instance, error) {
	return s.load(ctx, eventID)
}

// Approve approves the current step for an actor holding its role and
// advances the pointer by exactly one. A concurrent decision on the same step
// makes this call fail with a conflict instead of advancing twice.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, eventID, userID string, roles []string) (*Instance, error) {
	updated, err := s.decide(ctx, eventID, roles, func(instance *Instance, index int) (*Instance, error) {
		return s.Repo.AdvanceStep(ctx, instance.ID, index, userID, s.now())
	})
	s.recordOutcome("approve", err)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Approval step approved",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.Int("current_step_index", updated.CurrentStepIndex),
	)
	if updated.Complete() {
		s.syncEventStatus(ctx, updated, StepApproved)
	}
	s.audit(ctx, userID, common_models.AuditActionApproval, ModelInstance, updated.ID.Hex(), map[string]common_models.Change{
		"current_step_index": {Old: updated.CurrentStepIndex - 1, New: updated.CurrentStepIndex},
	})
	s.publish(ctx, "approval.approved", updated, userID)
	return updated, nil
}

// Reject rejects the current step; the instance then accepts no further decisions
func (s *ApprovalServiceImpl) Reject(ctx context.Context, eventID, userID string, roles []string, reason string) (*Instance, error) {
	updated, err := s.decide(ctx, eventID, roles, func(instance *Instance, index int) (*Instance, error) {
		return s.Repo.RejectStep(ctx, instance.ID, index, userID, reason, s.now())
	})
	s.recordOutcome("reject", err)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Approval step rejected", zap.String("event_id", eventID), zap.String("user_id", userID))
	s.syncEventStatus(ctx, updated, StepRejected)
	s.audit(ctx, userID, common_models.AuditActionReject, ModelInstance, updated.ID.Hex(), map[string]common_models.Change{
		"status": {Old: StepPending, New: StepRejected},
		"reason": {Old: nil, New: reason},
	})
	s.publish(ctx, "approval.rejected", updated, userID)
	return updated, nil
}

// decide runs the checks shared by approve and reject, then applies the
// conditional transition for the step the instance was read at.
func (s *ApprovalServiceImpl) decide(ctx context.Context, eventID string, roles []string, apply func(*Instance, int) (*Instance, error)) (*Instance, error) {
	instance, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}

	switch {
	case instance.Rejected():
		return nil, ErrApprovalRejected
	case instance.Complete():
		return nil, ErrApprovalCompleted
	}

	index := instance.CurrentStepIndex
	step, ok := instance.CurrentStep()
	if !ok {
		return nil, fmt.Errorf("%w: index %d of %d", ErrStepNotFound, index, len(instance.Approvals))
	}
	if !slices.Contains(roles, step.Role) {
		return nil, fmt.Errorf("role %s is required for step %d: %w", step.Role, index+1, apperror.ErrAuthorization)
	}

	updated, err := apply(instance, index)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrStepConflict
	}
	return updated, nil
}

func (s *ApprovalServiceImpl) AddComment(ctx context.Context, eventID, userID, text, parentCommentID string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		err := fmt.Errorf("comment text is required: %w", apperror.ErrInvalid)
		s.recordOutcome("comment", err)
		return nil, err
	}

	instance, err := s.load(ctx, eventID)
	if err != nil {
		s.recordOutcome("comment", err)
		return nil, err
	}

	comment := Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if parentCommentID != "" {
		parent, err := primitive.ObjectIDFromHex(parentCommentID)
		if _, found := instance.findComment(parent); err != nil || !found {
			s.recordOutcome("comment", ErrParentNotFound)
			return nil, ErrParentNotFound
		}
		comment.ParentCommentID = &parent
	}

	ok, err := s.Repo.PushComment(ctx, instance.ID, comment)
	if err == nil && !ok {
		// The parent or the instance disappeared after it was read
		err = ErrInstanceNotFound
		if comment.ParentCommentID != nil {
			err = ErrParentNotFound
		}
	}
	s.recordOutcome("comment", err)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, userID, common_models.AuditActionComment, ModelInstance, instance.ID.Hex(), map[string]common_models.Change{
		"comment": {Old: nil, New: comment.Text},
	})
	s.publish(ctx, "approval.comment_added", instance, userID)
	return &comment, nil
}

// RemoveComment deletes a comment; replies to it keep their text but lose the
// parent reference.
func (s *ApprovalServiceImpl) RemoveComment(ctx context.Context, eventID, commentID, userID string, roles []string) error {
	removed, err := s.removeComment(ctx, eventID, commentID, userID, roles)
	s.recordOutcome("comment_remove", err)
	if err != nil {
		return err
	}

	s.audit(ctx, userID, common_models.AuditActionComment, ModelInstance, removed.ID.Hex(), map[string]common_models.Change{
		"comment": {Old: commentID, New: nil},
	})
	s.publish(ctx, "approval.comment_removed", removed, userID)
	return nil
}

func (s *ApprovalServiceImpl) removeComment(ctx context.Context, eventID, commentID, userID string, roles []string) (*Instance, error) {
	instance, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return nil, ErrCommentNotFound
	}
	comment, found := instance.findComment(oid)
	if !found {
		return nil, ErrCommentNotFound
	}
	if comment.UserID != userID && !s.isAdmin(roles) {
		return nil, fmt.Errorf("only the author or an %s can remove a comment: %w", s.AdminRole, apperror.ErrAuthorization)
	}

	ok, err := s.Repo.PullComment(ctx, instance.ID, oid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCommentNotFound
	}
	return instance, nil
}

func (s *ApprovalServiceImpl) isAdmin(roles []string) bool {
	if s.AdminRole == "" {
		return false
	}
	return slices.ContainsFunc(roles, func(role string) bool {
		return strings.EqualFold(role, s.AdminRole)
	})
}

func (s *ApprovalServiceImpl) load(ctx context.Context, eventID string) (*Instance, error) {
	oid, err := parseID("event", eventID)
	if err != nil {
		return nil, err
	}
	instance, err := s.Repo.FindByEventID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, ErrInstanceNotFound
	}
	return instance, nil
}

func (s *ApprovalServiceImpl) syncEventStatus(ctx context.Context, instance *Instance, status StepStatus) {
	if s.Events == nil {
		return
	}
	if err := s.Events.SetApprovalStatus(ctx, instance.EventID, status); err != nil {
		s.Logger.Error("Failed to sync event approval status",
			zap.String("event_id", instance.EventID.Hex()),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func (s *ApprovalServiceImpl) audit(ctx context.Context, actorID string, action common_models.AuditAction, module, recordID string, changes map[string]common_models.Change) {
	if s.AuditService == nil {
		return
	}
	err := s.AuditService.Record(ctx, audit.Entry{
		Action:   action,
		Module:   module,
		RecordID: recordID,
		ActorID:  actorID,
		Changes:  changes,
	})
	if err != nil {
		s.Logger.Warn("Failed to write audit log", zap.String("record_id", recordID), zap.Error(err))
	}
}

func (s *ApprovalServiceImpl) publish(ctx context.Context, kind string, instance *Instance, actorID string) {
	if s.Notifier == nil {
		return
	}
	tenantID, _ := tenant.FromContext(ctx)
	s.Notifier.Publish(tenantID, Update{
		Type:             kind,
		EventID:          instance.EventID.Hex(),
		CurrentStepIndex: instance.CurrentStepIndex,
		Status:           instance.Status(),
		ActorID:          actorID,
		At:               s.now(),
	})
}

func (s *ApprovalServiceImpl) recordOutcome(action string, err error) {
	s.record(action, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperror.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperror.ErrAuthorization):
		return "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		return "conflict"
	case errors.Is(err, apperror.ErrInvalid):
		return "invalid"
	default:
		return "error"
	}
}

func parseID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s id %q: %w", kind, id, apperror.ErrInvalid)
	}
	return oid, nil
}

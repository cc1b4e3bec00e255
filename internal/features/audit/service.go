package audit

import (
	"context"
	"fmt"
	"time"

	"campus-events/internal/common/apperror"
	common_models "campus-events/internal/common/models"
	"campus-events/internal/tenant"
	"campus-events/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SystemActor is recorded when a change has no authenticated actor
const SystemActor = "system"

const (
	DefaultPageSize int64 = 20
	MaxPageSize     int64 = 100
)

type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error)
}

// Entry is one approval change to be recorded
type Entry struct {
	Action   common_models.AuditAction
	Module   string
	RecordID string
	// ActorID falls back to the authenticated user in ctx, then to SystemActor
	ActorID string
	Changes map[string]common_models.Change
}

// Filter narrows a listing; empty fields match everything
type Filter struct {
	Module   string
	RecordID string
}

type AuditService interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter Filter, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
	Logger   *zap.Logger

	now func() time.Time
}

func NewAuditService(repo AuditRepository, userRepo UserFinder, logger *zap.Logger) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
		Logger:   logger,
		now:      time.Now,
	}
}

// Record stores entry against the tenant bound to ctx
func (s *AuditServiceImpl) Record(ctx context.Context, entry Entry) error {
	tenantID, ok := tenant.FromContext(ctx)
	if !ok {
		return fmt.Errorf("no tenant bound to audit entry: %w", apperror.ErrConfiguration)
	}

	actorID := entry.ActorID
	if actorID == "" {
		if claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims); ok {
			actorID = claims.UserID
		}
	}
	if actorID == "" {
		actorID = SystemActor
	}

	return s.Repo.Create(ctx, common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Tenant:    tenantID,
		Action:    entry.Action,
		Module:    entry.Module,
		RecordID:  entry.RecordID,
		ActorID:   actorID,
		Changes:   entry.Changes,
		Timestamp: s.now(),
	})
}

// List returns one page of the trail, newest first, with actor names resolved.
// limit is clamped to MaxPageSize.
func (s *AuditServiceImpl) List(ctx context.Context, filter Filter, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}

	logs, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	s.resolveActorNames(ctx, logs)
	return logs, nil
}

func (s *AuditServiceImpl) resolveActorNames(ctx context.Context, logs []common_models.AuditLog) {
	var ids []string
	seen := make(map[string]struct{})
	for _, log := range logs {
		if log.ActorID == SystemActor || log.ActorID == "" {
			continue
		}
		if _, dup := seen[log.ActorID]; !dup {
			seen[log.ActorID] = struct{}{}
			ids = append(ids, log.ActorID)
		}
	}

	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		users, err := s.UserRepo.FindByIDs(ctx, ids)
		if err != nil {
			s.Logger.Warn("Failed to resolve audit actor names", zap.Error(err))
		}
		for _, user := range users {
			names[user.ID.Hex()] = user.Username
		}
	}

	for i := range logs {
		switch name, ok := names[logs[i].ActorID]; {
		case logs[i].ActorID == SystemActor || logs[i].ActorID == "":
			logs[i].ActorName = "System"
		case ok:
			logs[i].ActorName = name
		default:
			logs[i].ActorName = "Unknown User"
		}
	}
}

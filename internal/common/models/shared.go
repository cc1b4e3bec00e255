package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	TenantIDKey  ContextKey = "tenant_id"
	RequestIDKey ContextKey = "request_id"
)

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionApproval AuditAction = "APPROVAL"
	AuditActionReject   AuditAction = "REJECT"
	AuditActionComment  AuditAction = "COMMENT"
	AuditActionFlow     AuditAction = "FLOW"
	AuditActionDiscard  AuditAction = "DISCARD"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Tenant    string             `bson:"tenant" json:"tenant"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`                       // The entity the change applies to
	RecordID  string             `bson:"record_id" json:"record_id"`                 // The ID of the record being modified
	ActorID   string             `bson:"actor_id" json:"actor_id"`                   // User ID who performed the action
	ActorName string             `bson:"-" json:"actor_name,omitempty"`              // Populated Name of the actor
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"` // field -> {old, new}
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	FirstName string             `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string             `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Roles     []string           `bson:"roles" json:"roles"` // Approving roles, e.g. "facilities"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type Log struct {
	Message      string    `bson:"message" json:"message"`
	Tenant       string    `bson:"tenant,omitempty" json:"tenant,omitempty"`
	RequestID    string    `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}

package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// TenantTarget is the storage address a tenant's data lives in
type TenantTarget struct {
	URI      string
	Database string
}

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string // Default storage, also hosts the platform collections
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// DefaultTenant is bound to requests that carry no tenant identifier
	DefaultTenant string
	// TenantDatabases maps tenant identifiers (e.g. "rpi") to their storage
	TenantDatabases map[string]TenantTarget
	// DedupeApprovalRoles collapses repeated roles when computing required approvals
	DedupeApprovalRoles bool
	// AdminRole may edit the approval flow and moderate comments
	AdminRole string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	tenants, err := ParseTenantDatabases(getEnv("TENANT_DATABASES", ""))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		JWTSecret:           getEnv("JWT_SECRET", "secret"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:              getEnv("DB_NAME", "campus-events"),
		SkipAuth:            getEnv("SKIP_AUTH", "false") == "true",
		Environment:         getEnv("ENVIRONMENT", "development"),
		AppId:               getEnv("APP_ID", "campus-events"),
		DefaultTenant:       getEnv("DEFAULT_TENANT", "default"),
		TenantDatabases:     tenants,
		DedupeApprovalRoles: getEnv("APPROVAL_DEDUPE_ROLES", "false") == "true",
		AdminRole:           getEnv("ADMIN_ROLE", "admin"),
	}, nil
}

// DefaultTarget is where unmapped tenants are routed
func (c *Config) DefaultTarget() *TenantTarget {
	if c.MongoURI == "" || c.DBName == "" {
		return nil
	}
	return &TenantTarget{URI: c.MongoURI, Database: c.DBName}
}

// ParseTenantDatabases parses "rpi=mongodb://host/rpi;berkeley=mongodb://host/berkeley".
// Entries are separated by ';' because replica-set URIs contain commas. The database
// name comes from the URI path.
func ParseTenantDatabases(raw string) (map[string]TenantTarget, error) {
	targets := make(map[string]TenantTarget)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		tenant, uri, ok := strings.Cut(entry, "=")
		tenant = strings.TrimSpace(tenant)
		uri = strings.TrimSpace(uri)
		if !ok || tenant == "" || uri == "" {
			return nil, fmt.Errorf("invalid TENANT_DATABASES entry %q", entry)
		}

		cs, err := connstring.ParseAndValidate(uri)
		if err != nil {
			return nil, fmt.Errorf("tenant %s: %w", tenant, err)
		}
		if cs.Database == "" {
			return nil, fmt.Errorf("tenant %s: database name missing from uri", tenant)
		}
		targets[tenant] = TenantTarget{URI: uri, Database: cs.Database}
	}
	return targets, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

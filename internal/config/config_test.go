package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTenantDatabases(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]TenantTarget
		wantErr bool
	}{
		{
			name: "Empty",
			raw:  "",
			want: map[string]TenantTarget{},
		},
		{
			name: "Two Tenants",
			raw:  "rpi=mongodb://localhost:27017/rpi_events; berkeley=mongodb://db2:27017/berkeley",
			want: map[string]TenantTarget{
				"rpi":      {URI: "mongodb://localhost:27017/rpi_events", Database: "rpi_events"},
				"berkeley": {URI: "mongodb://db2:27017/berkeley", Database: "berkeley"},
			},
		},
		{
			name: "Replica Set Hosts",
			raw:  "rpi=mongodb://a:27017,b:27017/rpi?replicaSet=rs0",
			want: map[string]TenantTarget{
				"rpi": {URI: "mongodb://a:27017,b:27017/rpi?replicaSet=rs0", Database: "rpi"},
			},
		},
		{
			name:    "Missing Separator",
			raw:     "rpi",
			wantErr: true,
		},
		{
			name:    "Missing Database",
			raw:     "rpi=mongodb://localhost:27017",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTenantDatabases(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultTarget(t *testing.T) {
	cfg := &Config{MongoURI: "mongodb://localhost:27017", DBName: "campus-events"}
	assert.Equal(t, &TenantTarget{URI: "mongodb://localhost:27017", Database: "campus-events"}, cfg.DefaultTarget())

	cfg.MongoURI = ""
	assert.Nil(t, cfg.DefaultTarget())
}

func TestLoadConfigAdminRole(t *testing.T) {
	t.Setenv("TENANT_DATABASES", "")
	t.Setenv("ADMIN_ROLE", "")
	require.NoError(t, os.Unsetenv("ADMIN_ROLE"))
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.AdminRole)

	t.Setenv("ADMIN_ROLE", "registrar")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "registrar", cfg.AdminRole)
}

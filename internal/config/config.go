// config.go
//
// Building and document registry data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of opsregistry.
// opsregistry is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// opsregistry is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with opsregistry.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/localnerve/opsregistry/internal/models"
)

// Data service backends selectable with DATA_SERVICE
const (
	ServiceSharePoint    = "SharePoint"
	ServiceAzureDatabase = "AzureDatabase"
	ServiceMock          = "Mock"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port     string
	LogLevel string

	// Data service selection
	DataService string
	UseMock     bool
	MockLatency time.Duration

	// SharePoint configuration
	SPSiteURL          string
	SPAccessToken      string
	SPBuildingsList    string
	SPDocumentsLibrary string
	SPTimeout          time.Duration

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBSeed            bool

	// Blob storage configuration
	BlobDriver      string // memory, fs, s3
	BlobFSRoot      string
	BlobS3Bucket    string
	BlobS3Region    string
	BlobS3Endpoint  string
	BlobS3PathStyle bool

	// Authorizer configuration
	AuthzURL      string
	AuthzClientID string

	// Audit identity used when no session is present
	DefaultActorName  string
	DefaultActorEmail string
}

// Load reads the optional env files, then builds the configuration from environment variables.
// Missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", f, err)
			}
		}
	}

	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DataService:        getEnv("DATA_SERVICE", ServiceSharePoint),
		UseMock:            getEnvAsBool("USE_MOCK", false),
		MockLatency:        time.Duration(getEnvAsInt("MOCK_LATENCY_MS", 300)) * time.Millisecond,
		SPSiteURL:          strings.TrimRight(getEnv("SP_SITE_URL", ""), "/"),
		SPAccessToken:      getEnv("SP_ACCESS_TOKEN", ""),
		SPBuildingsList:    getEnv("SP_BUILDINGS_LIST", "Buildings"),
		SPDocumentsLibrary: getEnv("SP_DOCUMENTS_LIBRARY", "KPFA_Documents"),
		SPTimeout:          time.Duration(getEnvAsInt("SP_TIMEOUT_SECONDS", 30)) * time.Second,
		DBType:             getEnv("DB_TYPE", "sqlite"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBDatabase:         getEnv("DB_DATABASE", ""),
		DBUser:             getEnv("DB_USER", ""),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:  getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBSeed:             getEnvAsBool("DB_SEED", false),
		BlobDriver:         getEnv("BLOB_DRIVER", "memory"),
		BlobFSRoot:         getEnv("BLOB_FS_ROOT", "./data/blobs"),
		BlobS3Bucket:       getEnv("BLOB_S3_BUCKET", ""),
		BlobS3Region:       getEnv("BLOB_S3_REGION", "us-east-1"),
		BlobS3Endpoint:     getEnv("BLOB_S3_ENDPOINT", ""),
		BlobS3PathStyle:    getEnvAsBool("BLOB_S3_PATH_STYLE", false),
		AuthzURL:           getEnv("AUTHZ_URL", ""),
		AuthzClientID:      getEnv("AUTHZ_CLIENT_ID", ""),
		DefaultActorName:   getEnv("DEFAULT_ACTOR_NAME", "Current User"),
		DefaultActorEmail:  getEnv("DEFAULT_ACTOR_EMAIL", "user@kpfa.org"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields required by the selected backend
func (c *Config) Validate() error {
	if c.UseMock || c.DataService == ServiceMock {
		return c.validateAuthz()
	}

	switch c.DataService {
	case ServiceAzureDatabase:
		if c.DBDatabase == "" {
			return fmt.Errorf("DB_DATABASE is required")
		}
		if c.DBType != "sqlite" && c.DBType != "sqlite3" && c.DBUser == "" {
			return fmt.Errorf("DB_USER is required")
		}
		switch c.BlobDriver {
		case "memory", "fs":
		case "s3":
			if c.BlobS3Bucket == "" {
				return fmt.Errorf("BLOB_S3_BUCKET is required")
			}
		default:
			return fmt.Errorf("unsupported BLOB_DRIVER: %s", c.BlobDriver)
		}
	default:
		if c.SPSiteURL == "" {
			return fmt.Errorf("SP_SITE_URL is required")
		}
	}

	return c.validateAuthz()
}

func (c *Config) validateAuthz() error {
	if c.AuthzURL != "" && c.AuthzClientID == "" {
		return fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}
	return nil
}

// DefaultActor is the person writes are attributed to when no session is present
func (c *Config) DefaultActor() models.Person {
	return models.Person{DisplayName: c.DefaultActorName, Email: c.DefaultActorEmail}
}

// AuthEnabled reports whether session validation is configured
func (c *Config) AuthEnabled() bool {
	return c.AuthzURL != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

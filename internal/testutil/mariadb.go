// mariadb.go
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

// Package testutil starts throwaway backing services for integration tests
// and local runs. It expects a reachable docker daemon.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/localnerve/opsregistry/data"
	"github.com/localnerve/opsregistry/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultMariaDBImage is used when DB_IMAGE is not set
const DefaultMariaDBImage = "mariadb:11.4"

const (
	appDatabase = "opsregistry"
	appUser     = "opsregistry"
	appPassword = "opsregistry"
)

// MariaDB is a running MariaDB container with the application account created
type MariaDB struct {
	Container    testcontainers.Container
	Host         string
	Port         string
	RootPassword string
}

// Logger is the subset of testing.TB used for progress messages
type Logger interface {
	Logf(format string, args ...any)
}

type stdoutLogger struct{}

func (stdoutLogger) Logf(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// StdoutLogger writes progress messages to standard output
var StdoutLogger Logger = stdoutLogger{}

// StartMariaDB starts image, waits for it to accept connections and applies the
// privileges script. An empty image falls back to DB_IMAGE, then DefaultMariaDBImage.
func StartMariaDB(ctx context.Context, log Logger, image string) (*MariaDB, error) {
	if image == "" {
		image = os.Getenv("DB_IMAGE")
	}
	if image == "" {
		image = DefaultMariaDBImage
	}
	rootPassword := os.Getenv("DB_ROOT_PASSWORD")
	if rootPassword == "" {
		rootPassword = "opsregistry-root"
	}

	tcpPort, err := nat.NewPort("tcp", "3306")
	if err != nil {
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	log.Logf("Starting %s", image)
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{string(tcpPort)},
			Env: map[string]string{
				"MARIADB_ROOT_PASSWORD": rootPassword,
				"MYSQL_ROOT_PASSWORD":   rootPassword,
			},
			WaitingFor: wait.ForListeningPort(tcpPort).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MariaDB: %w", err)
	}

	m := &MariaDB{Container: c, RootPassword: rootPassword}
	if m.Host, err = c.Host(ctx); err != nil {
		m.Terminate(ctx, log)
		return nil, fmt.Errorf("failed to get MariaDB host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, tcpPort)
	if err != nil {
		m.Terminate(ctx, log)
		return nil, fmt.Errorf("failed to get MariaDB port: %w", err)
	}
	m.Port = mapped.Port()

	if err := m.init(ctx); err != nil {
		m.Terminate(ctx, log)
		return nil, err
	}
	log.Logf("MariaDB ready at %s:%s", m.Host, m.Port)
	return m, nil
}

func (m *MariaDB) init(ctx context.Context) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", m.RootPassword, m.Host, m.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer db.Close()

	// the port opens before the server accepts logins
	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	if err := ExecuteSQL(ctx, db, data.InitdbMariaDBPrivileges); err != nil {
		return fmt.Errorf("failed to execute privileges init sql: %w", err)
	}
	return nil
}

// Config returns a service configuration pointing at the application database
func (m *MariaDB) Config() *config.Config {
	return &config.Config{
		LogLevel:          "warn",
		DataService:       config.ServiceAzureDatabase,
		DBType:            "mariadb",
		DBHost:            m.Host,
		DBPort:            m.Port,
		DBDatabase:        appDatabase,
		DBUser:            appUser,
		DBPassword:        appPassword,
		DBConnectionLimit: 5,
		BlobDriver:        "memory",
		DefaultActorName:  "Integration Test",
		DefaultActorEmail: "it@kpfa.org",
	}
}

// Env lists the variables that point the service at this container
func (m *MariaDB) Env() []string {
	return []string{
		"DATA_SERVICE=" + config.ServiceAzureDatabase,
		"DB_TYPE=mariadb",
		"DB_HOST=" + m.Host,
		"DB_PORT=" + m.Port,
		"DB_DATABASE=" + appDatabase,
		"DB_USER=" + appUser,
		"DB_PASSWORD=" + appPassword,
	}
}

// Terminate stops and removes the container
func (m *MariaDB) Terminate(ctx context.Context, log Logger) {
	if m == nil || m.Container == nil {
		return
	}
	if err := m.Container.Terminate(ctx); err != nil {
		log.Logf("Failed to terminate MariaDB: %v", err)
	}
}

// ExecuteSQL runs each statement of a script. Line comments are dropped, string
// literals are kept intact.
func ExecuteSQL(ctx context.Context, db *sql.DB, script string) error {
	lines := strings.Split(script, "\n")
	for i, l := range lines {
		lines[i] = excludeComment(l)
	}

	for _, q := range strings.Split(strings.Join(lines, " "), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("%w : when executing > %s", err, q)
		}
	}
	return nil
}

// excludeComment cuts a trailing -- comment that is not inside quotes
func excludeComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '-' && i+1 < len(line) && line[i+1] == '-':
			return line[:i]
		}
	}
	return line
}

package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const probeTable = "launch_connection_probe"

// ProbeResult is what a round trip against the database observed.
type ProbeResult struct {
	Driver     string        `json:"driver"`
	Version    string        `json:"version"`
	ServerTime string        `json:"server_time"`
	RecordID   int64         `json:"record_id"`
	Elapsed    time.Duration `json:"elapsed"`
}

type probeDialect struct {
	version string
	create  string
	insert  string
	lastID  string // empty when insert returns the id
}

var probeDialects = map[string]probeDialect{
	DriverPostgres: {
		version: "SELECT version()",
		create:  "CREATE TEMPORARY TABLE IF NOT EXISTS " + probeTable + " (id SERIAL PRIMARY KEY, created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)",
		insert:  "INSERT INTO " + probeTable + " DEFAULT VALUES RETURNING id",
	},
	DriverSQLite: {
		version: "SELECT sqlite_version()",
		create:  "CREATE TEMPORARY TABLE IF NOT EXISTS " + probeTable + " (id INTEGER PRIMARY KEY AUTOINCREMENT, created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)",
		insert:  "INSERT INTO " + probeTable + " DEFAULT VALUES RETURNING id",
	},
	DriverMySQL: {
		version: "SELECT VERSION()",
		create:  "CREATE TEMPORARY TABLE IF NOT EXISTS " + probeTable + " (id INT AUTO_INCREMENT PRIMARY KEY, created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)",
		insert:  "INSERT INTO " + probeTable + " () VALUES ()",
		lastID:  "SELECT LAST_INSERT_ID()",
	},
}

// Probe checks that the database answers queries and accepts writes: it
// reads the server version and clock, then inserts into a temporary table
// and reads back the generated id. All statements run on one pooled
// connection since temporary tables are connection scoped.
func Probe(ctx context.Context, db *gorm.DB) (*ProbeResult, error) {
	driver := db.Dialector.Name()
	d, ok := probeDialects[driver]
	if !ok {
		return nil, fmt.Errorf("probe: unsupported driver %s", driver)
	}

	start := time.Now()
	res := &ProbeResult{Driver: driver}

	err := db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := conn.Raw(d.version).Scan(&res.Version).Error; err != nil {
			return fmt.Errorf("probe: version: %w", err)
		}
		if err := conn.Raw("SELECT CURRENT_TIMESTAMP").Scan(&res.ServerTime).Error; err != nil {
			return fmt.Errorf("probe: server time: %w", err)
		}
		if err := conn.Exec(d.create).Error; err != nil {
			return fmt.Errorf("probe: create temp table: %w", err)
		}
		defer conn.Exec("DROP TABLE IF EXISTS " + probeTable)

		if d.lastID == "" {
			if err := conn.Raw(d.insert).Scan(&res.RecordID).Error; err != nil {
				return fmt.Errorf("probe: insert: %w", err)
			}
			return nil
		}
		if err := conn.Exec(d.insert).Error; err != nil {
			return fmt.Errorf("probe: insert: %w", err)
		}
		if err := conn.Raw(d.lastID).Scan(&res.RecordID).Error; err != nil {
			return fmt.Errorf("probe: insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// Ping checks connectivity within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Package gateway manages the database session used to persist generated
// observations. A session lives for exactly one run: connect, one batch
// insert, close.
package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	aqerrors "github.com/aquatel/aquatel/internal/errors"
	"github.com/aquatel/aquatel/internal/wallet"
	"github.com/aquatel/aquatel/pkg/types"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultTable is the target table for generated observations.
const DefaultTable = "water_consumption_data"

// DefaultPingTimeout bounds the connection check.
const DefaultPingTimeout = 10 * time.Second

// ConnectParams holds everything needed to open an authenticated session.
type ConnectParams struct {
	// Driver is the database/sql driver name. Defaults to sqlite3.
	Driver string

	// ConfigDir is the directory holding the staged credential
	// artifacts (ewallet.pem, tnsnames.ora).
	ConfigDir string

	// User and Password authenticate the session. They are substituted
	// into {user}/{password} placeholders of the resolved descriptor,
	// never logged.
	User     string
	Password string

	// DSN is a net service alias resolved through the staged
	// tnsnames.ora, or a literal connection string.
	DSN string

	// WalletPassword unlocks the staged wallet; substituted into the
	// {wallet_password} placeholder.
	WalletPassword string

	// Table overrides DefaultTable when set.
	Table string

	// PingTimeout bounds the connection check. Defaults to
	// DefaultPingTimeout.
	PingTimeout time.Duration
}

// Conn wraps an open database handle scoped to a single run.
type Conn struct {
	db    *sql.DB
	table string
}

// Close releases the session.
func (c *Conn) Close() error {
	return c.db.Close()
}

// Connect verifies the staged credential artifacts, resolves the DSN
// through the staged net-service mapping, and opens and pings a session.
// All failures are reported as connect errors; callers treat a failed
// connect as "skip this run", never as fatal to the process.
func Connect(ctx context.Context, params ConnectParams) (*Conn, error) {
	driver := params.Driver
	if driver == "" {
		driver = "sqlite3"
	}

	for _, name := range []string{wallet.PEMFile, wallet.TNSFile} {
		staged := filepath.Join(params.ConfigDir, name)
		if _, err := os.Stat(staged); err != nil {
			return nil, aqerrors.NewConnectError(
				fmt.Sprintf("credential artifact %s is not staged", name), err)
		}
	}

	dsn, err := wallet.ResolveDSN(filepath.Join(params.ConfigDir, wallet.TNSFile), params.DSN)
	if err != nil {
		return nil, aqerrors.NewConnectError("resolving dsn", err)
	}
	dsn = expandDSN(dsn, params)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, aqerrors.NewConnectError("opening session", err)
	}
	// One session, one batch, closed at end of run
	db.SetMaxOpenConns(1)

	timeout := params.PingTimeout
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, aqerrors.NewConnectError("verifying session", err)
	}

	table := params.Table
	if table == "" {
		table = DefaultTable
	}
	return &Conn{db: db, table: table}, nil
}

// expandDSN substitutes credential placeholders embedded in the resolved
// descriptor. Staged descriptors reference {user}, {password} and
// {wallet_password} rather than carrying secrets in the wallet.
func expandDSN(dsn string, params ConnectParams) string {
	r := strings.NewReplacer(
		"{user}", params.User,
		"{password}", params.Password,
		"{wallet_password}", params.WalletPassword,
	)
	return r.Replace(dsn)
}

// InsertBatch executes a single parameterized multi-row insert inside one
// transaction. Either every record commits or none do: any row failure
// rolls the whole batch back before the error is returned.
func InsertBatch(ctx context.Context, conn *Conn, records []types.Observation) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := conn.db.BeginTx(ctx, nil)
	if err != nil {
		return aqerrors.NewInsertError("beginning transaction", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(conn.table))
	if err != nil {
		tx.Rollback()
		return aqerrors.NewInsertError("preparing insert", err)
	}

	for i, rec := range records {
		_, err := stmt.ExecContext(ctx,
			string(rec.TimeOfDay),
			string(rec.Season),
			rec.Temperature,
			rec.HouseholdSize,
			string(rec.DayOfWeek),
			rec.WaterConsumption,
			rec.IsAnomaly,
		)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return aqerrors.NewInsertError(
				fmt.Sprintf("inserting record %d of %d", i+1, len(records)), err)
		}
	}
	stmt.Close()

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return aqerrors.Wrap(aqerrors.ErrCategoryDatabase, aqerrors.CodeCommitFailed,
			"committing batch", err)
	}

	return nil
}

// insertSQL builds the parameterized insert for the target table. Column
// order matches the Observation field order.
func insertSQL(table string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (time_of_day, season, temperature, household_size, day_of_week, water_consumption, is_anomaly) VALUES (?, ?, ?, ?, ?, ?, ?)",
		table)
}

// EnsureSchema creates the target table when it does not exist. The
// production schema is owned by the database team; this exists for local
// development and tests.
func EnsureSchema(ctx context.Context, conn *Conn) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		time_of_day       TEXT    NOT NULL,
		season            TEXT    NOT NULL,
		temperature       REAL    NOT NULL,
		household_size    INTEGER NOT NULL CHECK (household_size BETWEEN 1 AND 5),
		day_of_week       TEXT    NOT NULL,
		water_consumption REAL    NOT NULL,
		is_anomaly        INTEGER NOT NULL CHECK (is_anomaly IN (0, 1))
	)`, conn.table)

	if _, err := conn.db.ExecContext(ctx, ddl); err != nil {
		return aqerrors.Wrap(aqerrors.ErrCategoryDatabase, aqerrors.CodeSchemaFailed,
			"creating target table", err)
	}
	return nil
}

// CountRows returns the number of committed rows in the target table.
func (c *Conn) CountRows(ctx context.Context) (int64, error) {
	var n int64
	err := c.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table)).Scan(&n)
	return n, err
}

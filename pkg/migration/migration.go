package migration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	"github.com/d-banana/safe-portfolio-management/pkg/questdb"
)

var (
	// ErrInvalidSteps is returned when a down migration is asked for no step.
	ErrInvalidSteps = errors.NewErrorDetails("steps must be greater than 0 for down migrations", errors.GeneralRepositoryError, "steps")
	// ErrMissingDownSQL is returned when an applied migration has no down file.
	ErrMissingDownSQL = errors.NewErrorDetails("no down sql found for migration", errors.GeneralRepositoryError, "down_sql")
)

// Migration is one pair of up/down SQL files.
type Migration struct {
	ID        string
	Name      string
	Timestamp time.Time
	UpSQL     string
	DownSQL   string
}

// Runner applies migrations found in a directory and records them in schema_migrations.
type Runner struct {
	client       questdb.Client
	logger       logger.Interface
	migrationDir string
}

// NewRunner creates a new migration runner.
func NewRunner(client questdb.Client, log logger.Interface, migrationDir string) *Runner {
	return &Runner{
		client:       client,
		logger:       log,
		migrationDir: migrationDir,
	}
}

// EnsureMigrationTable creates the schema_migrations table if it doesn't exist.
func (r *Runner) EnsureMigrationTable(ctx context.Context) error {
	return r.client.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
			id STRING,
			name STRING,
			applied_at TIMESTAMP
		) TIMESTAMP(applied_at) PARTITION BY DAY;`)
}

// AppliedMigrations returns the set of applied migration ids.
func (r *Runner) AppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := r.client.Query(ctx, "SELECT id FROM schema_migrations ORDER BY applied_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}

	return applied, rows.Err()
}

// LoadMigrations loads every *.up.sql file of the directory, sorted by name.
func (r *Runner) LoadMigrations() ([]Migration, error) {
	upFiles, err := filepath.Glob(filepath.Join(r.migrationDir, "*.up.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(upFiles)

	migrations := make([]Migration, 0, len(upFiles))
	for _, upFile := range upFiles {
		m, err := parseMigrationFiles(upFile)
		if err != nil {
			return nil, errors.NewTracer(fmt.Sprintf("failed to parse migration %s", upFile)).Wrap(err)
		}
		migrations = append(migrations, m)
	}

	return migrations, nil
}

// parseMigrationFiles reads an up file and its optional down sibling.
// File names follow YYYYMMDDHHMMSS_name.up.sql.
func parseMigrationFiles(upFilePath string) (Migration, error) {
	upContent, err := os.ReadFile(upFilePath)
	if err != nil {
		return Migration{}, err
	}

	id := strings.TrimSuffix(filepath.Base(upFilePath), ".up.sql")
	name := id
	timestamp := time.Unix(0, 0).UTC()
	if stamp, rest, ok := strings.Cut(id, "_"); ok {
		name = rest
		if ts, err := time.Parse("20060102150405", stamp); err == nil {
			timestamp = ts
		}
	}

	var downSQL string
	downFilePath := strings.TrimSuffix(upFilePath, ".up.sql") + ".down.sql"
	if downContent, err := os.ReadFile(downFilePath); err == nil {
		downSQL = strings.TrimSpace(string(downContent))
	}

	return Migration{
		ID:        id,
		Name:      name,
		Timestamp: timestamp,
		UpSQL:     strings.TrimSpace(string(upContent)),
		DownSQL:   downSQL,
	}, nil
}

// MigrateUp applies at most steps pending migrations; steps <= 0 applies all of them.
func (r *Runner) MigrateUp(ctx context.Context, steps int) error {
	migrations, err := r.LoadMigrations()
	if err != nil {
		return err
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var toApply []Migration
	for _, m := range migrations {
		if !applied[m.ID] {
			toApply = append(toApply, m)
		}
	}
	if steps > 0 && len(toApply) > steps {
		toApply = toApply[:steps]
	}

	for _, m := range toApply {
		if m.UpSQL == "" {
			r.logger.WarnContext(ctx, "migration has no up sql", logger.NewField("id", m.ID))
			continue
		}

		err := questdb.WithTx(ctx, r.client, func(txCtx context.Context) error {
			if err := r.client.Exec(txCtx, m.UpSQL); err != nil {
				return errors.NewTracer(fmt.Sprintf("failed to apply migration %s", m.ID)).Wrap(err)
			}
			if err := r.client.Exec(txCtx, "INSERT INTO schema_migrations VALUES ($1, $2, now())", m.ID, m.Name); err != nil {
				return errors.NewTracer(fmt.Sprintf("failed to record migration %s", m.ID)).Wrap(err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		r.logger.InfoContext(ctx, "applied migration", logger.NewField("id", m.ID))
	}

	return nil
}

// MigrateDown reverts the last steps applied migrations.
func (r *Runner) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		return ErrInvalidSteps.WithOperands(steps)
	}

	migrations, err := r.LoadMigrations()
	if err != nil {
		return err
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var toRevert []Migration
	for i := len(migrations) - 1; i >= 0 && len(toRevert) < steps; i-- {
		if applied[migrations[i].ID] {
			toRevert = append(toRevert, migrations[i])
		}
	}

	for _, m := range toRevert {
		if m.DownSQL == "" {
			return ErrMissingDownSQL.WithOperands(m.ID)
		}

		err := questdb.WithTx(ctx, r.client, func(txCtx context.Context) error {
			if err := r.client.Exec(txCtx, m.DownSQL); err != nil {
				return errors.NewTracer(fmt.Sprintf("failed to revert migration %s", m.ID)).Wrap(err)
			}
			if err := r.client.Exec(txCtx, "DELETE FROM schema_migrations WHERE id = $1", m.ID); err != nil {
				return errors.NewTracer(fmt.Sprintf("failed to remove migration record %s", m.ID)).Wrap(err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		r.logger.InfoContext(ctx, "reverted migration", logger.NewField("id", m.ID))
	}

	return nil
}

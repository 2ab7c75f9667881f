package pg

import (
	_ "github.com/lib/pq"
	"github.com/milhasdesk/points-admin/pkg/logger"
	"github.com/pressly/goose/v3"
)

// Migrate applies the goose migrations that define the points-admin
// schema: users, cedentes, purchases with their line items, and the
// cedente_commissions table with its unique purchase index.
func Migrate(cfg Config, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.Up(db, dir); err != nil {
		return err
	}

	logger.Info("migrations applied", "dir", dir)
	return nil
}

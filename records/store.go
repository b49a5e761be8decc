package records

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bkryza/luma-user-setup-example/types"
)

const currentDatabaseVersion = 1

//go:embed migrations/*.sql
var migrationsFS embed.FS

// LedgerEntry is a provisioned account as recorded in the local ledger. The
// ledger is the only local record of issued tokens across runs, since the
// accounts file is truncated on every run.
type LedgerEntry struct {
	RunID     string    `db:"run_id"`
	UID       uint      `db:"uid"`
	Login     string    `db:"login"`
	UserID    string    `db:"user_id"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
}

// Store is a sqlite-backed ledger of provisioned accounts.
type Store struct {
	db *sqlx.DB
}

func NewStore(path string, ro ...bool) (*Store, error) {
	var roFlag bool
	if len(ro) > 0 && ro[0] {
		roFlag = true
	}

	dsn := path
	if roFlag {
		dsn += "?mode=ro"
	}

	database, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	return &Store{db: database}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Store) Migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	dbDriver, err := sqlite3.WithInstance(s.db.DB, &sqlite3.Config{})
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "accounts_ledger", dbDriver)
	if err != nil {
		return err
	}

	err = migrator.Migrate(currentDatabaseVersion)
	if err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	}

	return nil
}

// SaveAccounts records a batch of provisioned accounts under a run id.
func (s *Store) SaveAccounts(ctx context.Context, runID string, accounts []types.Account) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sqlx.Tx) {
		_ = tx.Rollback()
	}(tx)

	preparedInsert, err := tx.PrepareNamed(`
INSERT INTO accounts (run_id, uid, login, user_id, token, created_at)
VALUES (:run_id, :uid, :login, :user_id, :token, :created_at);`)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, account := range accounts {
		_, err := preparedInsert.Exec(LedgerEntry{
			RunID:     runID,
			UID:       account.UID,
			Login:     account.Login,
			UserID:    account.UserID,
			Token:     account.Token,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) GetAccounts(ctx context.Context) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	err := s.db.SelectContext(ctx, &entries,
		`SELECT run_id, uid, login, user_id, token, created_at FROM accounts ORDER BY uid;`)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *Store) GetAccountByLogin(ctx context.Context, login string) (LedgerEntry, error) {
	var entry LedgerEntry

	row := s.db.QueryRowxContext(ctx,
		`SELECT run_id, uid, login, user_id, token, created_at FROM accounts WHERE login == ?`, login)
	if row.Err() != nil {
		return LedgerEntry{}, row.Err()
	}

	err := row.StructScan(&entry)
	if errors.Is(err, sql.ErrNoRows) {
		return LedgerEntry{}, NewEntryNotFound(fmt.Sprintf("no entries for login %q", login))
	} else if err != nil {
		return LedgerEntry{}, err
	}

	return entry, nil
}

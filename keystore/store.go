package keystore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/wallet"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a sqlite backed Storage. Mnemonics are encrypted with
// nacl/secretbox under a key derived from the store secret with scrypt and a
// per-record salt.
type Store struct {
	conn   *sql.DB
	secret []byte
	params Params
}

var _ Storage = (*Store)(nil)

func Open(path string, secret []byte, params Params) (*Store, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{
		conn:   conn,
		secret: append([]byte(nil), secret...),
		params: params,
	}, nil
}

func (s *Store) Close() error {
	clear(s.secret)
	return s.conn.Close()
}

func (s *Store) SaveMnemonic(ctx context.Context, src PrivateHDFactorSource) error {
	rec, err := seal(s.secret, s.params, src.Mnemonic)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO mnemonics (factor_source_id, kind, word_count, salt, nonce, ciphertext, scrypt_n, scrypt_r, scrypt_p)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		src.ID().String(), string(src.ID().Kind), src.Mnemonic.WordCount(),
		rec.salt, rec.nonce, rec.ciphertext,
		rec.params.N, rec.params.R, rec.params.P,
	)
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %s", ErrAlreadyStored, src.ID())
	}
	if err != nil {
		return fmt.Errorf("inserting mnemonic: %w", err)
	}
	return nil
}

func (s *Store) LoadMnemonic(ctx context.Context, id factor.ID) (*wallet.MnemonicWithPassphrase, error) {
	var rec sealed
	err := s.conn.QueryRowContext(ctx,
		`SELECT salt, nonce, ciphertext, scrypt_n, scrypt_r, scrypt_p FROM mnemonics WHERE factor_source_id = ?`,
		id.String(),
	).Scan(&rec.salt, &rec.nonce, &rec.ciphertext, &rec.params.N, &rec.params.R, &rec.params.P)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying mnemonic: %w", err)
	}

	mwp, err := open(s.secret, rec)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", id, err)
	}
	return &mwp, nil
}

// DeleteMnemonic removes the mnemonic for id. Deleting an absent id is not an
// error.
func (s *Store) DeleteMnemonic(ctx context.Context, id factor.ID) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM mnemonics WHERE factor_source_id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting mnemonic: %w", err)
	}
	return nil
}

func (s *Store) ContainsMnemonic(ctx context.Context, id factor.ID) (bool, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mnemonics WHERE factor_source_id = ?`, id.String(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying mnemonic: %w", err)
	}
	return n > 0, nil
}

// IDs lists the factor sources with a stored mnemonic.
func (s *Store) IDs(ctx context.Context) ([]factor.ID, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT factor_source_id FROM mnemonics ORDER BY created_at, factor_source_id`)
	if err != nil {
		return nil, fmt.Errorf("listing mnemonics: %w", err)
	}
	defer rows.Close()

	var ids []factor.ID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning mnemonic id: %w", err)
		}
		id, err := factor.ParseID(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing stored id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

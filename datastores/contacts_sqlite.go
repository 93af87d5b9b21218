package datastores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const contactsSchema = `CREATE TABLE IF NOT EXISTS contacts (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    contact_id TEXT NOT NULL UNIQUE,
    first      TEXT NOT NULL DEFAULT '',
    last       TEXT NOT NULL DEFAULT '',
    avatar     TEXT NOT NULL DEFAULT '',
    twitter    TEXT NOT NULL DEFAULT '',
    notes      TEXT NOT NULL DEFAULT '',
    favorite   INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);`

const contactsColumns = `contact_id, first, last, avatar, twitter, notes, favorite, created_at`

// ContactsSQLite implements [ContactsStore] on a SQLite database.
// Rows are listed by their insertion sequence.
type ContactsSQLite struct {
	db *sql.DB
}

var _ ContactsStore = (*ContactsSQLite)(nil)

// OpenContactsSQLite opens the database at dsn and creates the schema if needed.
// Use ":memory:" for a private in-memory database.
func OpenContactsSQLite(ctx context.Context, dsn string) (*ContactsSQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", dsn, err)
	}
	// a single connection serializes writers and keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, contactsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &ContactsSQLite{db: db}, nil
}

func (s *ContactsSQLite) Close() error { return s.db.Close() }

// Ping verifies the database is still reachable.
func (s *ContactsSQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *ContactsSQLite) Create(ctx context.Context, c *Contact) (ContactID, error) {
	c.ID = ContactID{*new(uuid32).initV4()}
	c.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO contacts ("+contactsColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID.String(), c.First, c.Last, c.Avatar, c.Twitter, c.Notes, c.Favorite, c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return ContactID{}, fmt.Errorf("inserting contact: %w", err)
	}
	return c.ID, nil
}

func (s *ContactsSQLite) List(ctx context.Context, query string) ([]*Contact, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+contactsColumns+" FROM contacts ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		if MatchQuery(c, query) {
			contacts = append(contacts, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return contacts, nil
}

func (s *ContactsSQLite) Get(ctx context.Context, id ContactID) (*Contact, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+contactsColumns+" FROM contacts WHERE contact_id = ?", id.String())
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, ErrObjectNotFound
	}
	return c, err
}

func (s *ContactsSQLite) Update(ctx context.Context, c *Contact) error {
	row := s.db.QueryRowContext(ctx,
		`UPDATE contacts SET first = ?, last = ?, avatar = ?, twitter = ?, notes = ?, favorite = ?
		WHERE contact_id = ? RETURNING created_at`,
		c.First, c.Last, c.Avatar, c.Twitter, c.Notes, c.Favorite, c.ID.String(),
	)
	var createdAt string
	switch err := row.Scan(&createdAt); err {
	case nil:
	case sql.ErrNoRows:
		return ErrObjectNotFound
	default:
		return fmt.Errorf("updating contact %s: %w", c.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return fmt.Errorf("parsing created_at of contact %s: %w", c.ID, err)
	}
	c.CreatedAt = t
	return nil
}

func (s *ContactsSQLite) SetFavorite(ctx context.Context, id ContactID, favorite bool) (*Contact, error) {
	row := s.db.QueryRowContext(ctx,
		"UPDATE contacts SET favorite = ? WHERE contact_id = ? RETURNING "+contactsColumns,
		favorite, id.String(),
	)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, ErrObjectNotFound
	}
	return c, err
}

func (s *ContactsSQLite) Delete(ctx context.Context, id ContactID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM contacts WHERE contact_id = ?", id.String())
	if err != nil {
		return fmt.Errorf("deleting contact %s: %w", id, err)
	}
	return nil
}

type scanner interface{ Scan(dest ...any) error }

func scanContact(row scanner) (*Contact, error) {
	var (
		c         Contact
		id        string
		createdAt string
	)
	err := row.Scan(&id, &c.First, &c.Last, &c.Avatar, &c.Twitter, &c.Notes, &c.Favorite, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning contact: %w", err)
	}
	if err := c.ID.UnmarshalText([]byte(id)); err != nil {
		return nil, fmt.Errorf("parsing contact id %q: %w", id, err)
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at of contact %s: %w", id, err)
	}
	return &c, nil
}

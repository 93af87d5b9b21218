package datastore

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/oaiiae/contacts-api/datastores"
)

//go:embed builtin.yaml
var builtinSeed []byte

type Options struct {
	Driver string `doc:"store contacts in inmem or sqlite"                     default:"inmem"`
	DSN    string `doc:"sqlite database file"                                  default:"contacts.db"`
	Seed   string `doc:"seed an empty store from builtin or a YAML file path"`
}

// Store is a [datastores.ContactsStore] with the resources it holds.
type Store struct {
	datastores.ContactsStore

	close func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Ping reports whether the underlying store is reachable.
// Stores without a connection are always reachable.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.ContactsStore.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Open returns the store selected by options, seeded if requested.
func Open(ctx context.Context, options *Options, logger *slog.Logger) (*Store, error) {
	var store *Store
	switch strings.ToLower(options.Driver) {
	case "", "inmem":
		store = &Store{ContactsStore: datastores.NewContactsInmem()}
	case "sqlite":
		s, err := datastores.OpenContactsSQLite(ctx, options.DSN)
		if err != nil {
			return nil, err
		}
		store = &Store{ContactsStore: s, close: s.Close}
	default:
		return nil, fmt.Errorf("unknown datastore driver %q", options.Driver)
	}
	logger.Info("datastore opened", "driver", options.Driver, "dsn", options.DSN)

	if options.Seed == "" {
		return store, nil
	}
	contacts, err := ReadContacts(options.Seed)
	if err != nil {
		store.Close()
		return nil, err
	}
	n, err := datastores.Seed(ctx, store, contacts)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("seeding datastore: %w", err)
	}
	logger.Info("datastore seeded", "from", options.Seed, "contacts", n)
	return store, nil
}

// ReadContacts decodes contacts from the YAML file at path,
// or from the builtin sample when path is "builtin".
func ReadContacts(path string) ([]*datastores.Contact, error) {
	var r io.Reader
	if path == "builtin" {
		r = bytes.NewReader(builtinSeed)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return datastores.DecodeContactsYAML(r)
}

// Import opens the store selected by options, without seeding it, and
// creates the contacts read from the YAML file at path.
func Import(ctx context.Context, options *Options, path string, logger *slog.Logger) (int, error) {
	contacts, err := ReadContacts(path)
	if err != nil {
		return 0, err
	}

	opts := *options
	opts.Seed = ""
	store, err := Open(ctx, &opts, logger)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return datastores.Import(ctx, store, contacts)
}

package datastores

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type contactYAML struct {
	First    string `yaml:"first"`
	Last     string `yaml:"last"`
	Avatar   string `yaml:"avatar"`
	Twitter  string `yaml:"twitter"`
	Notes    string `yaml:"notes"`
	Favorite bool   `yaml:"favorite"`
}

// DecodeContactsYAML reads a YAML sequence of contacts. Ids and creation
// times are left for the store to assign.
func DecodeContactsYAML(r io.Reader) ([]*Contact, error) {
	var docs []contactYAML
	err := yaml.NewDecoder(r).Decode(&docs)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decoding contacts: %w", err)
	}

	contacts := make([]*Contact, 0, len(docs))
	for _, d := range docs {
		contacts = append(contacts, &Contact{
			First:    d.First,
			Last:     d.Last,
			Avatar:   d.Avatar,
			Twitter:  d.Twitter,
			Notes:    d.Notes,
			Favorite: d.Favorite,
		})
	}
	return contacts, nil
}

// Import creates contacts in order and returns how many were created.
func Import(ctx context.Context, s ContactsStore, contacts []*Contact) (int, error) {
	for i, c := range contacts {
		if _, err := s.Create(ctx, c); err != nil {
			return i, fmt.Errorf("importing contact %d: %w", i, err)
		}
	}
	return len(contacts), nil
}

// Seed imports contacts only if s holds none yet.
func Seed(ctx context.Context, s ContactsStore, contacts []*Contact) (int, error) {
	existing, err := s.List(ctx, "")
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	return Import(ctx, s, contacts)
}

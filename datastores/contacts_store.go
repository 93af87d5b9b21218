package datastores

import (
	"context"
	"errors"
	"strings"
	"time"
)

type (
	ContactID struct{ uuid32 }
	Contact   struct {
		ID        ContactID
		First     string
		Last      string
		Avatar    string
		Twitter   string
		Notes     string
		Favorite  bool
		CreatedAt time.Time
	}
)

// ParseContactID parses the text form of a [ContactID].
func ParseContactID(s string) (ContactID, error) {
	var id ContactID
	err := id.UnmarshalText([]byte(s))
	return id, err
}

// Name returns the non-empty name parts joined by a space.
func (c *Contact) Name() string {
	switch {
	case c.First == "":
		return c.Last
	case c.Last == "":
		return c.First
	default:
		return c.First + " " + c.Last
	}
}

// ContactsStore holds contacts in insertion order.
//
// List filters on query with [MatchQuery]; an empty query lists everything.
// Get, Update and SetFavorite return [ErrObjectNotFound] for unknown ids,
// Delete does not. SetFavorite changes only the flag, atomically.
// Implementations return copies and are safe for concurrent use.
type ContactsStore interface {
	Create(context.Context, *Contact) (ContactID, error)
	List(ctx context.Context, query string) ([]*Contact, error)
	Get(context.Context, ContactID) (*Contact, error)
	Update(context.Context, *Contact) error
	SetFavorite(ctx context.Context, id ContactID, favorite bool) (*Contact, error)
	Delete(context.Context, ContactID) error
}

var ErrObjectNotFound = errors.New("store: object not found")

// CreateEmptyContact creates a contact with no name, no profile and not a favorite.
func CreateEmptyContact(ctx context.Context, s ContactsStore) (*Contact, error) {
	c := new(Contact)
	_, err := s.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MatchQuery reports whether the name of c contains query, ignoring case
// and surrounding whitespace of query. A blank query matches every contact.
func MatchQuery(c *Contact, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name()), strings.ToLower(query))
}

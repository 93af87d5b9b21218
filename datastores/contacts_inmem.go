package datastores

import (
	"context"
	"slices"
	"sync"
	"time"
)

// ContactsInmem implements [ContactsStore].
type ContactsInmem struct {
	mu       sync.Mutex
	index    map[ContactID]int
	contacts []*Contact
}

var _ ContactsStore = (*ContactsInmem)(nil)

func NewContactsInmem() *ContactsInmem {
	return &ContactsInmem{index: make(map[ContactID]int)}
}

func (s *ContactsInmem) Create(_ context.Context, c *Contact) (ContactID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
retry:
	c.ID = ContactID{*new(uuid32).initV4()}
	_, loaded := s.index[c.ID]
	if loaded {
		goto retry
	}
	c.CreatedAt = time.Now()
	s.index[c.ID] = len(s.contacts)
	s.contacts = append(s.contacts, clone(c))
	return c.ID, nil
}

func (s *ContactsInmem) List(_ context.Context, query string) ([]*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts := make([]*Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if MatchQuery(c, query) {
			contacts = append(contacts, clone(c))
		}
	}
	return contacts, nil
}

func (s *ContactsInmem) Get(_ context.Context, id ContactID) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return clone(s.contacts[index]), nil
}

func (s *ContactsInmem) Update(_ context.Context, c *Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[c.ID]
	if !ok {
		return ErrObjectNotFound
	}
	stored := s.contacts[index]
	c.CreatedAt = stored.CreatedAt
	s.contacts[index] = clone(c)
	return nil
}

func (s *ContactsInmem) SetFavorite(_ context.Context, id ContactID, favorite bool) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	s.contacts[index].Favorite = favorite
	return clone(s.contacts[index]), nil
}

func (s *ContactsInmem) Delete(_ context.Context, id ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return nil
	}
	delete(s.index, id)
	s.contacts = slices.Delete(s.contacts, index, index+1)
	for i := index; i < len(s.contacts); i++ {
		s.index[s.contacts[i].ID] = i
	}
	return nil
}

func clone(c *Contact) *Contact { cc := *c; return &cc }

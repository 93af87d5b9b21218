package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/contacts-api/datastores"
)

type Contacts struct {
	Store        ds.ContactsStore
	ErrorHandler func(context.Context, error)

	// EditLocation returns where to send the client after a contact is created.
	// Defaults to [DefaultEditLocation].
	EditLocation func(ds.ContactID) string
}

// DefaultEditLocation is the path of the edit view of contact id.
func DefaultEditLocation(id ds.ContactID) string { return "/contacts/" + id.String() + "/edit" }

type ContactModel struct {
	ID ds.ContactID `json:"id" readOnly:"true"`

	First     string    `json:"first,omitempty"    example:"john"`
	Last      string    `json:"last,omitempty"     example:"smith"`
	Avatar    string    `json:"avatar,omitempty"   example:"https://placecats.com/200/200"`
	Twitter   string    `json:"twitter,omitempty"  example:"@johnsmith"`
	Notes     string    `json:"notes,omitempty"`
	Favorite  bool      `json:"favorite,omitempty"`
	CreatedAt time.Time `json:"createdAt"          readOnly:"true"`
}

func contactModel(c *ds.Contact) ContactModel {
	return ContactModel{
		ID:        c.ID,
		First:     c.First,
		Last:      c.Last,
		Avatar:    c.Avatar,
		Twitter:   c.Twitter,
		Notes:     c.Notes,
		Favorite:  c.Favorite,
		CreatedAt: c.CreatedAt,
	}
}

func (h *Contacts) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

type ContactsListOutput struct {
	Body struct {
		Contacts []ContactModel `json:"contacts"`
		Q        *string        `json:"q" nullable:"true" doc:"search query as received, null when absent"`
	}
}

// ContactsListInput resolves whether q was sent at all, since an empty
// query string parameter is otherwise indistinguishable from a missing one.
type ContactsListInput struct {
	Q string `query:"q" maxLength:"256" doc:"filter contacts whose name contains q, ignoring case"`

	hasQ bool
}

// Resolve implements [huma.Resolver].
func (i *ContactsListInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.hasQ = u.Query().Has("q")
	return nil
}

func (h *Contacts) list(ctx context.Context, input *ContactsListInput) (*ContactsListOutput, error) {
	contacts, err := h.Store.List(ctx, input.Q)
	if err != nil {
		return nil, err
	}

	out := &ContactsListOutput{}
	out.Body.Contacts = make([]ContactModel, 0, len(contacts))
	for _, contact := range contacts {
		out.Body.Contacts = append(out.Body.Contacts, contactModel(contact))
	}
	if input.hasQ {
		out.Body.Q = &input.Q
	}
	return out, nil
}

func (h *Contacts) RegisterCreate(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/",
		handlerWithErrorHandler(h.create, h.ErrorHandler),
		opStatus(http.StatusFound),
		opErrors(http.StatusInternalServerError),
	)
}

type ContactsCreateOutput struct {
	Location string `header:"Location" doc:"edit view of the new contact"`
}

func (h *Contacts) create(ctx context.Context, _ *struct{}) (*ContactsCreateOutput, error) {
	contact, err := ds.CreateEmptyContact(ctx, h.Store)
	if err != nil {
		return nil, err
	}

	location := DefaultEditLocation
	if h.EditLocation != nil {
		location = h.EditLocation
	}
	return &ContactsCreateOutput{Location: location(contact.ID)}, nil
}

func (h *Contacts) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/{id}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

type ContactsGetOutput struct {
	Body ContactModel
}

func (h *Contacts) get(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" doc:"ID of the contact to get"`
}) (*ContactsGetOutput, error) {
	contact, err := h.Store.Get(ctx, input.ID)
	switch {
	case err == nil:
		return &ContactsGetOutput{Body: contactModel(contact)}, nil

	case errors.Is(err, ds.ErrObjectNotFound):
		return nil, huma.Error404NotFound("id not found", err)

	default:
		return nil, err
	}
}

func (h *Contacts) RegisterUpdate(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/{id}",
		handlerWithErrorHandler(h.update, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

type ContactInput struct {
	First    string `json:"first,omitempty"    maxLength:"100" example:"john"`
	Last     string `json:"last,omitempty"     maxLength:"100" example:"smith"`
	Avatar   string `json:"avatar,omitempty"   maxLength:"2048"`
	Twitter  string `json:"twitter,omitempty"  maxLength:"100" example:"@johnsmith"`
	Notes    string `json:"notes,omitempty"    maxLength:"4096"`
	Favorite bool   `json:"favorite,omitempty"`
}

func (h *Contacts) update(ctx context.Context, input *struct {
	ID   ds.ContactID `path:"id" doc:"ID of the contact to update"`
	Body ContactInput
}) (*ContactsGetOutput, error) {
	contact := &ds.Contact{
		ID:       input.ID,
		First:    input.Body.First,
		Last:     input.Body.Last,
		Avatar:   input.Body.Avatar,
		Twitter:  input.Body.Twitter,
		Notes:    input.Body.Notes,
		Favorite: input.Body.Favorite,
	}
	err := h.Store.Update(ctx, contact)
	switch {
	case err == nil:
		return &ContactsGetOutput{Body: contactModel(contact)}, nil

	case errors.Is(err, ds.ErrObjectNotFound):
		return nil, huma.Error404NotFound("id not found", err)

	default:
		return nil, err
	}
}

func (h *Contacts) RegisterFavorite(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/{id}/favorite",
		handlerWithErrorHandler(h.favorite, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

func (h *Contacts) favorite(ctx context.Context, input *struct {
	ID   ds.ContactID `path:"id" doc:"ID of the contact to mark"`
	Body struct {
		Favorite bool `json:"favorite"`
	}
}) (*ContactsGetOutput, error) {
	contact, err := h.Store.SetFavorite(ctx, input.ID, input.Body.Favorite)
	switch {
	case err == nil:
		return &ContactsGetOutput{Body: contactModel(contact)}, nil

	case errors.Is(err, ds.ErrObjectNotFound):
		return nil, huma.Error404NotFound("id not found", err)

	default:
		return nil, err
	}
}

func (h *Contacts) RegisterDelete(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/{id}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

func (h *Contacts) del(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" doc:"ID of the contact to delete"`
}) (*struct{}, error) {
	return nil, h.Store.Delete(ctx, input.ID)
}

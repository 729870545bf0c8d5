package domain

import (
	"context"
	"errors"
)

// ErrNotFound marks an entity that simply does not exist, as opposed to a
// transient failure of the backing source.
var ErrNotFound = errors.New("not found")

// ErrInvalidLead marks a lead submission rejected by validation.
var ErrInvalidLead = errors.New("invalid lead")

// ContentSource is the read-only query interface of the headless CMS.
type ContentSource interface {
	ListCategories(ctx context.Context) ([]CategoryRecord, error)
	ListProducts(ctx context.Context) ([]ProductRecord, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDetailRecord, error)
}

type LeadRepo interface {
	Save(ctx context.Context, l *Lead) error
}

// Mail is an outbound notification message; the mailer adapter owns the
// recipient configuration.
type Mail struct {
	Subject string
	Body    string
	ReplyTo string
}

type Mailer interface {
	Send(m Mail) error
}

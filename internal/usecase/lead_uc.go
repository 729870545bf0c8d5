package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qudratrading/mawared/internal/domain"
)

// LeadRequest is the submitted form payload before validation.
type LeadRequest struct {
	FormType    string `json:"formType" validate:"required,oneof=quote contact"`
	Name        string `json:"name" validate:"required,max=140"`
	Email       string `json:"email" validate:"required,email,max=140"`
	Phone       string `json:"phone" validate:"max=60"`
	Subject     string `json:"subject" validate:"max=200"`
	Message     string `json:"message" validate:"required,max=5000"`
	ProductSlug string `json:"productSlug" validate:"max=140"`
}

type LeadUC struct {
	Leads    domain.LeadRepo
	Mailer   domain.Mailer
	validate *validator.Validate
}

func NewLeadUC(leads domain.LeadRepo, mailer domain.Mailer) *LeadUC {
	return &LeadUC{Leads: leads, Mailer: mailer, validate: validator.New()}
}

// Submit validates, persists (when a repo is configured) and emails a lead.
// A mail failure after a successful save is logged, not returned.
func (uc *LeadUC) Submit(ctx context.Context, req LeadRequest, loc domain.Locale) (*domain.Lead, error) {
	req.FormType = strings.TrimSpace(req.FormType)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	req.ProductSlug = strings.TrimSpace(req.ProductSlug)

	if err := uc.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidLead, err)
	}

	l := &domain.Lead{
		ID:          uuid.New(),
		FormType:    domain.LeadFormType(req.FormType),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Subject:     req.Subject,
		Message:     req.Message,
		ProductSlug: req.ProductSlug,
		Locale:      string(loc),
	}

	if uc.Leads != nil {
		if err := uc.Leads.Save(ctx, l); err != nil {
			return nil, fmt.Errorf("save lead: %w", err)
		}
	}

	if uc.Mailer != nil {
		if err := uc.Mailer.Send(leadMail(l)); err != nil {
			log.Error().Err(err).Str("lead", l.ID.String()).Msg("lead mail failed")
		}
	}
	return l, nil
}

func leadMail(l *domain.Lead) domain.Mail {
	subject := l.Subject
	if subject == "" {
		subject = "Website " + string(l.FormType) + " from " + l.Name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Form: %s\nName: %s\nEmail: %s\n", l.FormType, l.Name, l.Email)
	if l.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", l.Phone)
	}
	if l.ProductSlug != "" {
		fmt.Fprintf(&b, "Product: %s\n", l.ProductSlug)
	}
	fmt.Fprintf(&b, "\n%s\n", l.Message)
	return domain.Mail{Subject: subject, Body: b.String(), ReplyTo: l.Email}
}

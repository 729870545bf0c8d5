package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qudratrading/mawared/internal/domain"
)

type fakeLeadRepo struct {
	saved []*domain.Lead
	err   error
}

func (f *fakeLeadRepo) Save(ctx context.Context, l *domain.Lead) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, l)
	return nil
}

type fakeMailer struct {
	sent []domain.Mail
	err  error
}

func (f *fakeMailer) Send(m domain.Mail) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func validLead() LeadRequest {
	return LeadRequest{
		FormType: "quote",
		Name:     "Khalid",
		Email:    " Khalid@Example.COM ",
		Message:  "Need 10 units of the CX200 pump.",
	}
}

func TestSubmitPersistsAndMails(t *testing.T) {
	repo := &fakeLeadRepo{}
	mail := &fakeMailer{}
	uc := NewLeadUC(repo, mail)

	l, err := uc.Submit(context.Background(), validLead(), domain.LocaleAR)
	require.NoError(t, err)
	assert.Equal(t, "khalid@example.com", l.Email)
	assert.Equal(t, "ar", l.Locale)
	require.Len(t, repo.saved, 1)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "khalid@example.com", mail.sent[0].ReplyTo)
	assert.Contains(t, mail.sent[0].Body, "CX200")
}

func TestSubmitValidation(t *testing.T) {
	uc := NewLeadUC(nil, nil)
	tests := []struct {
		name   string
		mutate func(*LeadRequest)
	}{
		{"missing email", func(r *LeadRequest) { r.Email = "" }},
		{"bad email", func(r *LeadRequest) { r.Email = "not-an-email" }},
		{"missing name", func(r *LeadRequest) { r.Name = "  " }},
		{"missing message", func(r *LeadRequest) { r.Message = "" }},
		{"unknown form type", func(r *LeadRequest) { r.FormType = "spam" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validLead()
			tt.mutate(&req)
			_, err := uc.Submit(context.Background(), req, domain.LocaleEN)
			assert.ErrorIs(t, err, domain.ErrInvalidLead)
		})
	}
}

func TestSubmitRepoFailurePropagates(t *testing.T) {
	repo := &fakeLeadRepo{err: errors.New("db down")}
	uc := NewLeadUC(repo, &fakeMailer{})
	_, err := uc.Submit(context.Background(), validLead(), domain.LocaleEN)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidLead)
}

func TestSubmitMailFailureIsAbsorbed(t *testing.T) {
	repo := &fakeLeadRepo{}
	uc := NewLeadUC(repo, &fakeMailer{err: errors.New("smtp down")})
	l, err := uc.Submit(context.Background(), validLead(), domain.LocaleEN)
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.Len(t, repo.saved, 1)
}

func TestSubmitWithoutRepoStillMails(t *testing.T) {
	mail := &fakeMailer{}
	uc := NewLeadUC(nil, mail)
	_, err := uc.Submit(context.Background(), validLead(), domain.LocaleEN)
	require.NoError(t, err)
	assert.Len(t, mail.sent, 1)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type LeadFormType string

const (
	LeadFormQuote   LeadFormType = "quote"
	LeadFormContact LeadFormType = "contact"
)

// Lead is a quote request or contact message submitted through the site.
type Lead struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	FormType    LeadFormType `gorm:"type:varchar(20);index"`
	Name        string       `gorm:"size:140"`
	Email       string       `gorm:"size:140;index"`
	Phone       string       `gorm:"size:60"`
	Subject     string       `gorm:"size:200"`
	Message     string       `gorm:"type:text"`
	ProductSlug string       `gorm:"size:140"`
	Locale      string       `gorm:"size:5"`
	CreatedAt   time.Time
}

package domain

import (
	"context"
	"strings"
	"time"
)

// ContactType tags who sent a contact message.
type ContactType string

const (
	ContactClient    ContactType = "client"
	ContactCandidate ContactType = "candidate"
)

func ParseContactType(s string) (ContactType, bool) {
	switch ContactType(s) {
	case ContactClient, ContactCandidate:
		return ContactType(s), true
	}
	return "", false
}

type ContactInput struct {
	ContactType ContactType `json:"contactType" validate:"required,oneof=client candidate"`
	FullName    string      `json:"fullName" validate:"required,max=120,valid_name,no_emoji"`
	PhoneNumber string      `json:"phoneNumber" validate:"required,valid_phone"`
	Email       string      `json:"email" validate:"required,email,max=254"`
	Message     string      `json:"message" validate:"required,max=5000"`
}

func (in *ContactInput) Normalize() {
	in.ContactType = ContactType(strings.ToLower(strings.TrimSpace(string(in.ContactType))))
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
}

type ContactMessage struct {
	ID int64 `json:"id"`
	ContactInput
	CreatedAt time.Time `json:"createdAt"`
}

// PublicContactInfo is the agency's published contact details.
type PublicContactInfo struct {
	Phone    string   `json:"phone"`
	WhatsApp string   `json:"whatsapp"`
	Email    string   `json:"email"`
	Facebook string   `json:"facebook"`
	Areas    []string `json:"areas"`
}

type ContactRepository interface {
	Create(ctx context.Context, msg *ContactMessage) error
	List(ctx context.Context) ([]ContactMessage, error)
	// Delete returns an apperror of kind not_found for unknown ids.
	Delete(ctx context.Context, id int64) error
}

// Notifier delivers intake notifications to the agency inbox.
type Notifier interface {
	IsConfigured() bool
	NotifyContactMessage(ctx context.Context, msg *ContactMessage) error
	NotifyEnquiry(ctx context.Context, enquiry *Enquiry) error
}

type ContactUsecase interface {
	Submit(ctx context.Context, input *ContactInput) (int64, error)
	List(ctx context.Context) ([]ContactMessage, error)
	Delete(ctx context.Context, id int64) error
	PublicContactInfo(ctx context.Context) PublicContactInfo
}

package domain

import (
	"context"
	"strings"
	"time"
)

// EnquiryInput is a client's hiring enquiry. CompanyName is optional.
type EnquiryInput struct {
	FullName    string  `json:"fullName" validate:"required,max=120,valid_name,no_emoji"`
	CompanyName *string `json:"companyName,omitempty" validate:"omitempty,max=120,no_emoji"`
	PhoneNumber string  `json:"phoneNumber" validate:"required,valid_phone"`
	Email       string  `json:"email" validate:"required,email,max=254"`
	Location    string  `json:"location" validate:"required,max=120,no_emoji"`
	ServiceType string  `json:"serviceType" validate:"required,max=120,no_emoji"`
	Message     string  `json:"message" validate:"required,max=5000"`
}

func (in *EnquiryInput) Normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.Location = strings.TrimSpace(in.Location)
	in.ServiceType = strings.TrimSpace(in.ServiceType)
	in.Message = strings.TrimSpace(in.Message)
	if in.CompanyName != nil {
		name := strings.TrimSpace(*in.CompanyName)
		if name == "" {
			in.CompanyName = nil
		} else {
			in.CompanyName = &name
		}
	}
}

type Enquiry struct {
	ID int64 `json:"id"`
	EnquiryInput
	CreatedAt time.Time `json:"createdAt"`
}

type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *Enquiry) error
	List(ctx context.Context) ([]Enquiry, error)
	// Delete returns an apperror of kind not_found for unknown ids.
	Delete(ctx context.Context, id int64) error
}

type EnquiryUsecase interface {
	Submit(ctx context.Context, input *EnquiryInput) (int64, error)
	List(ctx context.Context) ([]Enquiry, error)
	Delete(ctx context.Context, id int64) error
}

package domain

import (
	"context"
	"strings"
	"time"
)

// CandidateInput holds the mutable, submitted fields of a candidate registration.
type CandidateInput struct {
	FullName        string `json:"fullName" validate:"required,max=120,valid_name,no_emoji"`
	IDNumber        string `json:"idNumber" validate:"required,max=32,no_emoji"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,valid_phone"`
	Email           string `json:"email" validate:"required,email,max=254"`
	PhysicalAddress string `json:"physicalAddress" validate:"required,max=300,no_emoji"`
	TradeSkill      string `json:"tradeSkill" validate:"required,max=100,no_emoji"`
	YearsExperience int    `json:"yearsExperience" validate:"gte=0,lte=70"`
	WorkAreas       string `json:"workAreas" validate:"required,max=300,no_emoji"`
}

// Normalize trims surrounding whitespace from every text field.
func (in *CandidateInput) Normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.IDNumber = strings.TrimSpace(in.IDNumber)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.PhysicalAddress = strings.TrimSpace(in.PhysicalAddress)
	in.TradeSkill = strings.TrimSpace(in.TradeSkill)
	in.WorkAreas = strings.TrimSpace(in.WorkAreas)
}

type Candidate struct {
	ID int64 `json:"id"`
	CandidateInput
	CV                *Document `json:"cv,omitempty"`
	IDCopy            *Document `json:"idCopy,omitempty"`
	MatricCert        *Document `json:"matricCert,omitempty"`
	QualificationCert *Document `json:"qualificationCert,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Document returns the document held in slot dt, or nil when the slot is empty.
func (c *Candidate) Document(dt DocumentType) *Document {
	switch dt {
	case DocCV:
		return c.CV
	case DocIDCopy:
		return c.IDCopy
	case DocMatricCert:
		return c.MatricCert
	case DocQualificationCert:
		return c.QualificationCert
	}
	return nil
}

// SetDocument overwrites slot dt.
func (c *Candidate) SetDocument(dt DocumentType, doc *Document) {
	switch dt {
	case DocCV:
		c.CV = doc
	case DocIDCopy:
		c.IDCopy = doc
	case DocMatricCert:
		c.MatricCert = doc
	case DocQualificationCert:
		c.QualificationCert = doc
	}
}

// Documents returns the populated slots.
func (c *Candidate) Documents() map[DocumentType]Document {
	docs := make(map[DocumentType]Document)
	for _, dt := range DocumentTypes {
		if d := c.Document(dt); d != nil {
			docs[dt] = *d
		}
	}
	return docs
}

type CandidateRepository interface {
	// Create assigns ID and CreatedAt on success.
	Create(ctx context.Context, candidate *Candidate) error
	// GetByID returns nil, nil when no candidate has the id.
	GetByID(ctx context.Context, id int64) (*Candidate, error)
	List(ctx context.Context) ([]Candidate, error)
	ListByTrade(ctx context.Context, trade string) ([]Candidate, error)
	// Update and Delete return an apperror of kind not_found for unknown ids.
	Update(ctx context.Context, id int64, input CandidateInput) error
	// Delete returns the content refs of the documents removed with the
	// candidate, read atomically with the delete.
	Delete(ctx context.Context, id int64) ([]string, error)
	// SetDocument upserts one slot and returns the content ref it replaced
	// (empty if the slot was unset). apperror NotFound if the candidate does
	// not exist.
	SetDocument(ctx context.Context, id int64, dt DocumentType, doc Document) (string, error)
}

type CandidateUsecase interface {
	// Public
	Submit(ctx context.Context, input *CandidateInput) (int64, error)
	UploadDocument(ctx context.Context, id int64, dt DocumentType, upload *DocumentUpload) (*Document, error)
	AttachDocument(ctx context.Context, id int64, dt DocumentType, doc Document) error

	// Admin
	List(ctx context.Context) ([]Candidate, error)
	ListByTrade(ctx context.Context, trade string) ([]Candidate, error)
	Update(ctx context.Context, id int64, input *CandidateInput) error
	Delete(ctx context.Context, id int64) error
	DocumentURL(ctx context.Context, id int64, dt DocumentType) (string, error)
	DownloadDocument(ctx context.Context, id int64, dt DocumentType) (*DocumentContent, error)
	Export(ctx context.Context) ([]byte, error)
}

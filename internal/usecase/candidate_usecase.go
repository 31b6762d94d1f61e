package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"
	"handyman-recruitment-backend/pkg/blobstore"
	"handyman-recruitment-backend/pkg/imaging"
	"handyman-recruitment-backend/pkg/logger"
	"handyman-recruitment-backend/pkg/security"
	"handyman-recruitment-backend/pkg/security/antivirus"
	"handyman-recruitment-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// allowedExtensions per document slot
var allowedExtensions = map[domain.DocumentType][]string{
	domain.DocCV:                security.ResumeExtensions,
	domain.DocIDCopy:            security.CertificateExtensions,
	domain.DocMatricCert:        security.CertificateExtensions,
	domain.DocQualificationCert: security.CertificateExtensions,
}

type candidateUsecase struct {
	repo     domain.CandidateRepository
	blobs    domain.BlobStore
	access   domain.AccessUsecase
	scanner  antivirus.Scanner
	validate *validator.Validate
}

func NewCandidateUsecase(
	repo domain.CandidateRepository,
	blobs domain.BlobStore,
	access domain.AccessUsecase,
	scanner antivirus.Scanner,
	validate *validator.Validate,
) domain.CandidateUsecase {
	if scanner == nil {
		scanner = antivirus.NewNoOpScanner()
	}
	return &candidateUsecase{
		repo:     repo,
		blobs:    blobs,
		access:   access,
		scanner:  scanner,
		validate: validate,
	}
}

func (u *candidateUsecase) Submit(ctx context.Context, input *domain.CandidateInput) (int64, error) {
	if input == nil {
		return 0, apperror.BadRequest("Candidate registration is required")
	}
	input.Normalize()
	if err := u.validate.Struct(input); err != nil {
		return 0, apperror.Validation("Invalid candidate registration", validation.FormatValidationErrors(err))
	}

	candidate := &domain.Candidate{CandidateInput: *input}
	if err := u.repo.Create(ctx, candidate); err != nil {
		return 0, repoError(err)
	}

	logger.Log.Info("Candidate registered", "candidate_id", candidate.ID, "trade", candidate.TradeSkill)
	return candidate.ID, nil
}

// UploadDocument checks, stores and attaches one file. Nothing is written to
// the blob store unless the candidate exists and the file passes every check.
func (u *candidateUsecase) UploadDocument(ctx context.Context, id int64, dt domain.DocumentType, upload *domain.DocumentUpload) (*domain.Document, error) {
	allowed, ok := allowedExtensions[dt]
	if !ok {
		return nil, apperror.BadRequest("Unknown document type")
	}
	if upload == nil || len(upload.Data) == 0 {
		return nil, apperror.BadRequest("File is required")
	}

	existing, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err)
	}
	if existing == nil {
		return nil, apperror.NotFound("Candidate not found")
	}

	fileName := security.SanitizeFilename(upload.FileName)
	check := security.ValidateFile(fileName, upload.Data, allowed)
	if !check.Valid {
		security.DefaultLogger().Log(ctx, security.SecurityEvent{
			Event:   security.EventUploadRejected,
			Details: map[string]interface{}{"candidate_id": id, "doc_type": string(dt), "reason": check.Error},
		})
		return nil, apperror.BadRequest("Invalid file: " + check.Error)
	}

	scan := u.scanner.Scan(ctx, fileName, upload.Data)
	if scan.Error != nil {
		return nil, apperror.Upstream("Malware scan unavailable, please try again later", scan.Error)
	}
	if scan.Infected {
		security.DefaultLogger().Log(ctx, security.SecurityEvent{
			Event:   security.EventMalwareDetected,
			Details: map[string]interface{}{"candidate_id": id, "doc_type": string(dt), "threat": scan.ThreatName},
		})
		return nil, apperror.BadRequest("File rejected by malware scan")
	}

	data, fileType := upload.Data, check.DetectedMIME
	if dt != domain.DocCV && security.IsImageExtension(check.Extension) {
		if compressed, err := imaging.Compress(data, imaging.DefaultMaxDimension, imaging.DefaultQuality); err != nil {
			logger.Log.Warn("Image compression failed, storing original", "candidate_id", id, "error", err)
		} else {
			data, fileType = compressed, "image/jpeg"
			fileName = strings.TrimSuffix(fileName, filepath.Ext(fileName)) + ".jpg"
		}
	}

	ref, err := u.blobs.Store(ctx, data, fileType)
	if err != nil {
		return nil, apperror.Upstream("Document storage unavailable", err)
	}

	doc := domain.Document{FileName: fileName, FileType: fileType, ContentRef: ref}
	if err := u.AttachDocument(ctx, id, dt, doc); err != nil {
		// Candidate deleted between the check and the attach
		u.deleteBlob(ctx, ref)
		return nil, err
	}

	doc.UploadedAt = time.Now().UTC()
	return &doc, nil
}

// AttachDocument sets slot dt of candidate id, replacing whatever was there.
func (u *candidateUsecase) AttachDocument(ctx context.Context, id int64, dt domain.DocumentType, doc domain.Document) error {
	if _, ok := allowedExtensions[dt]; !ok {
		return apperror.BadRequest("Unknown document type")
	}
	doc.FileName = strings.TrimSpace(doc.FileName)
	doc.FileType = strings.TrimSpace(doc.FileType)
	if doc.FileName == "" || doc.FileType == "" || doc.ContentRef == "" {
		return apperror.BadRequest("File name, file type and content reference are required")
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}

	replaced, err := u.repo.SetDocument(ctx, id, dt, doc)
	if err != nil {
		return repoError(err)
	}
	if replaced != "" && replaced != doc.ContentRef {
		u.deleteBlob(ctx, replaced)
	}

	logger.Log.Info("Document attached", "candidate_id", id, "doc_type", dt)
	return nil
}

func (u *candidateUsecase) List(ctx context.Context) ([]domain.Candidate, error) {
	if err := u.access.AuthorizeCaller(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	candidates, err := u.repo.List(ctx)
	if err != nil {
		return nil, repoError(err)
	}
	return candidates, nil
}

func (u *candidateUsecase) ListByTrade(ctx context.Context, trade string) ([]domain.Candidate, error) {
	if err := u.access.AuthorizeCaller(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	trade = strings.TrimSpace(trade)
	var (
		candidates []domain.Candidate
		err        error
	)
	if trade == "" {
		candidates, err = u.repo.List(ctx)
	} else {
		candidates, err = u.repo.ListByTrade(ctx, trade)
	}
	if err != nil {
		return nil, repoError(err)
	}
	return candidates, nil
}

// Update replaces the submitted fields; document slots are untouched.
func (u *candidateUsecase) Update(ctx context.Context, id int64, input *domain.CandidateInput) error {
	if err := u.access.AuthorizeCaller(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if input == nil {
		return apperror.BadRequest("Candidate fields are required")
	}
	input.Normalize()
	if err := u.validate.Struct(input); err != nil {
		return apperror.Validation("Invalid candidate fields", validation.FormatValidationErrors(err))
	}
	if err := u.repo.Update(ctx, id, *input); err != nil {
		return repoError(err)
	}
	return nil
}

// Delete removes the record and its documents. Blob cleanup is best effort:
// the record is already gone by then.
func (u *candidateUsecase) Delete(ctx context.Context, id int64) error {
	if err := u.access.AuthorizeCaller(ctx, domain.RoleAdmin); err != nil {
		return err
	}

	refs, err := u.repo.Delete(ctx, id)
	if err != nil {
		return repoError(err)
	}
	for _, ref := range refs {
		u.deleteBlob(ctx, ref)
	}

	caller, _ := domain.PrincipalFromContext(ctx)
	security.DefaultLogger().LogAdminAction(ctx, security.EventRecordDeleted, string(caller), map[string]interface{}{
		"kind": "candidate",
		"id":   id,
	})
	return nil
}

func (u *candidateUsecase) DocumentURL(ctx context.Context, id int64, dt domain.DocumentType) (string, error) {
	doc, err := u.authorizedDocument(ctx, id, dt)
	if err != nil {
		return "", err
	}
	url, err := u.blobs.DirectURL(ctx, doc.ContentRef)
	if err != nil {
		return "", blobError(err)
	}
	return url, nil
}

func (u *candidateUsecase) DownloadDocument(ctx context.Context, id int64, dt domain.DocumentType) (*domain.DocumentContent, error) {
	doc, err := u.authorizedDocument(ctx, id, dt)
	if err != nil {
		return nil, err
	}
	data, err := u.blobs.Fetch(ctx, doc.ContentRef)
	if err != nil {
		return nil, blobError(err)
	}
	return &domain.DocumentContent{Document: *doc, Data: data}, nil
}

func (u *candidateUsecase) authorizedDocument(ctx context.Context, id int64, dt domain.DocumentType) (*domain.Document, error) {
	if err := u.access.AuthorizeCaller(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if _, ok := allowedExtensions[dt]; !ok {
		return nil, apperror.BadRequest("Unknown document type")
	}

	candidate, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err)
	}
	if candidate == nil {
		return nil, apperror.NotFound("Candidate not found")
	}
	doc := candidate.Document(dt)
	if doc == nil {
		return nil, apperror.NotFound(fmt.Sprintf("No %s uploaded for this candidate", dt))
	}

	caller, _ := domain.PrincipalFromContext(ctx)
	security.DefaultLogger().LogAdminAction(ctx, security.EventDocumentAccessed, string(caller), map[string]interface{}{
		"candidate_id": id,
		"doc_type":     string(dt),
	})
	return doc, nil
}

func (u *candidateUsecase) deleteBlob(ctx context.Context, ref string) {
	if err := u.blobs.Delete(context.WithoutCancel(ctx), ref); err != nil {
		logger.Log.Warn("Failed to delete stored document", "error", err)
	}
}

func blobError(err error) error {
	if errors.Is(err, blobstore.ErrNotFound) {
		return apperror.NotFound("Document content not found")
	}
	return apperror.Upstream("Document storage unavailable", err)
}

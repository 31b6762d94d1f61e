package usecase

import (
	"context"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"
	"handyman-recruitment-backend/pkg/logger"
	"handyman-recruitment-backend/pkg/security"
	"handyman-recruitment-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type enquiryUsecase struct {
	repo     domain.EnquiryRepository
	access   domain.AccessUsecase
	notifier domain.Notifier
	validate *validator.Validate
}

func NewEnquiryUsecase(repo domain.EnquiryRepository, access domain.AccessUsecase, notifier domain.Notifier, validate *validator.Validate) domain.EnquiryUsecase {
	return &enquiryUsecase{repo: repo, access: access, notifier: notifier, validate: validate}
}

func (u *enquiryUsecase) Submit(ctx context.Context, input *domain.EnquiryInput) (int64, error) {
	if input == nil {
		return 0, apperror.BadRequest("Enquiry is required")
	}
	input.Normalize()
	if err := u.validate.Struct(input); err != nil {
		return 0, apperror.Validation("Invalid enquiry", validation.FormatValidationErrors(err))
	}

	enquiry := &domain.Enquiry{EnquiryInput: *input}
	if err := u.repo.Create(ctx, enquiry); err != nil {
		return 0, repoError(err)
	}
	logger.Log.Info("Enquiry submitted", "enquiry_id", enquiry.ID, "service", enquiry.ServiceType)

	notify(ctx, u.notifier, "enquiry", enquiry.ID, func(ctx context.Context) error {
		return u.notifier.NotifyEnquiry(ctx, enquiry)
	})
	return enquiry.ID, nil
}

func (u *enquiryUsecase) List(ctx context.Context) ([]domain.Enquiry, error) {
	if err := u.access.AuthorizeCaller(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	enquiries, err := u.repo.List(ctx)
	if err != nil {
		return nil, repoError(err)
	}
	return enquiries, nil
}

func (u *enquiryUsecase) Delete(ctx context.Context, id int64) error {
	if err := u.access.AuthorizeCaller(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return repoError(err)
	}

	caller, _ := domain.PrincipalFromContext(ctx)
	security.DefaultLogger().LogAdminAction(ctx, security.EventRecordDeleted, string(caller), map[string]interface{}{
		"kind": "enquiry",
		"id":   id,
	})
	return nil
}

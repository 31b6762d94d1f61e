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

// AgencyContactInfo is what the public site shows on the contact page.
var AgencyContactInfo = domain.PublicContactInfo{
	Phone:    "0712115763",
	WhatsApp: "27712115763",
	Email:    "hragency415@gmail.com",
	Facebook: "https://www.facebook.com/HandymanRecruitmentAgency",
	Areas:    []string{"Uitenhage", "Gqeberha"},
}

type contactUsecase struct {
	repo     domain.ContactRepository
	access   domain.AccessUsecase
	notifier domain.Notifier
	validate *validator.Validate
}

func NewContactUsecase(repo domain.ContactRepository, access domain.AccessUsecase, notifier domain.Notifier, validate *validator.Validate) domain.ContactUsecase {
	return &contactUsecase{repo: repo, access: access, notifier: notifier, validate: validate}
}

func (u *contactUsecase) Submit(ctx context.Context, input *domain.ContactInput) (int64, error) {
	if input == nil {
		return 0, apperror.BadRequest("Contact message is required")
	}
	input.Normalize()
	if err := u.validate.Struct(input); err != nil {
		return 0, apperror.Validation("Invalid contact message", validation.FormatValidationErrors(err))
	}

	msg := &domain.ContactMessage{ContactInput: *input}
	if err := u.repo.Create(ctx, msg); err != nil {
		return 0, repoError(err)
	}
	logger.Log.Info("Contact message received", "message_id", msg.ID, "contact_type", msg.ContactType)

	notify(ctx, u.notifier, "contact_message", msg.ID, func(ctx context.Context) error {
		return u.notifier.NotifyContactMessage(ctx, msg)
	})
	return msg.ID, nil
}

func (u *contactUsecase) List(ctx context.Context) ([]domain.ContactMessage, error) {
	if err := u.access.AuthorizeCaller(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	messages, err := u.repo.List(ctx)
	if err != nil {
		return nil, repoError(err)
	}
	return messages, nil
}

func (u *contactUsecase) Delete(ctx context.Context, id int64) error {
	if err := u.access.AuthorizeCaller(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return repoError(err)
	}

	caller, _ := domain.PrincipalFromContext(ctx)
	security.DefaultLogger().LogAdminAction(ctx, security.EventRecordDeleted, string(caller), map[string]interface{}{
		"kind": "contact_message",
		"id":   id,
	})
	return nil
}

func (u *contactUsecase) PublicContactInfo(ctx context.Context) domain.PublicContactInfo {
	info := AgencyContactInfo
	info.Areas = append([]string(nil), AgencyContactInfo.Areas...)
	return info
}

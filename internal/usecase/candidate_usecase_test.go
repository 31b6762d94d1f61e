package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/internal/repository/memory"
	"handyman-recruitment-backend/internal/usecase"
	"handyman-recruitment-backend/pkg/apperror"
	"handyman-recruitment-backend/pkg/blobstore"
	"handyman-recruitment-backend/pkg/security/antivirus"
	"handyman-recruitment-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func validCandidate() *domain.CandidateInput {
	return &domain.CandidateInput{
		FullName:        "Thabo Mokoena",
		IDNumber:        "9001015800087",
		PhoneNumber:     "071 234 5678",
		Email:           "thabo@example.com",
		PhysicalAddress: "12 Main Road, Uitenhage",
		TradeSkill:      "Plumber",
		YearsExperience: 6,
		WorkAreas:       "Uitenhage, Gqeberha",
	}
}

type candidateFixture struct {
	uc      domain.CandidateUsecase
	repo    *memory.CandidateRepository
	blobs   *blobstore.Memory
	users   *memory.UserRepository
	scanner *fakeScanner
}

func newCandidateFixture(t *testing.T) *candidateFixture {
	t.Helper()
	f := &candidateFixture{
		repo:    memory.NewCandidateRepository(),
		blobs:   blobstore.NewMemory("https://blobs.test/"),
		users:   memory.NewUserRepository(),
		scanner: &fakeScanner{},
	}
	validate := validation.New()
	access := usecase.NewAccessUsecase(f.users, validate)
	f.uc = usecase.NewCandidateUsecase(f.repo, f.blobs, access, f.scanner, validate)

	require.NoError(t, f.users.UpsertRole(context.Background(), "admin1", domain.RoleAdmin))
	require.NoError(t, f.users.UpsertRole(context.Background(), "user1", domain.RoleUser))
	return f
}

func TestSubmitCandidate(t *testing.T) {
	f := newCandidateFixture(t)
	ctx := context.Background()

	t.Run("valid input gets a fresh id and no documents", func(t *testing.T) {
		id1, err := f.uc.Submit(ctx, validCandidate())
		require.NoError(t, err)
		id2, err := f.uc.Submit(ctx, validCandidate())
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)

		c, _ := f.repo.GetByID(ctx, id1)
		require.NotNil(t, c)
		assert.Empty(t, c.Documents())
	})

	t.Run("missing field is rejected before any write", func(t *testing.T) {
		before, _ := f.repo.List(ctx)
		in := validCandidate()
		in.WorkAreas = "   "
		_, err := f.uc.Submit(ctx, in)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.KindValidation))

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Contains(t, appErr.Details, "Preferred work areas: is required")

		after, _ := f.repo.List(ctx)
		assert.Len(t, after, len(before))
	})
}

func TestAttachDocument(t *testing.T) {
	f := newCandidateFixture(t)
	ctx := context.Background()
	id, err := f.uc.Submit(ctx, validCandidate())
	require.NoError(t, err)

	t.Run("unknown candidate is not found", func(t *testing.T) {
		err := f.uc.AttachDocument(ctx, id+100, domain.DocCV, domain.Document{FileName: "cv.pdf", FileType: "application/pdf", ContentRef: "x"})
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("last writer wins and other slots are untouched", func(t *testing.T) {
		ref1, _ := f.blobs.Store(ctx, []byte("one"), "application/pdf")
		ref2, _ := f.blobs.Store(ctx, []byte("two"), "application/pdf")

		require.NoError(t, f.uc.AttachDocument(ctx, id, domain.DocMatricCert, domain.Document{FileName: "m1.pdf", FileType: "application/pdf", ContentRef: ref1}))
		require.NoError(t, f.uc.AttachDocument(ctx, id, domain.DocMatricCert, domain.Document{FileName: "m2.pdf", FileType: "application/pdf", ContentRef: ref2}))

		c, _ := f.repo.GetByID(ctx, id)
		require.NotNil(t, c.MatricCert)
		assert.Equal(t, "m2.pdf", c.MatricCert.FileName)
		assert.Nil(t, c.CV)

		_, err := f.blobs.Fetch(ctx, ref1)
		assert.ErrorIs(t, err, blobstore.ErrNotFound, "replaced blob is cleaned up")
	})

	t.Run("unknown document type", func(t *testing.T) {
		err := f.uc.AttachDocument(ctx, id, "passport", domain.Document{FileName: "p.pdf", FileType: "application/pdf", ContentRef: "x"})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})
}

func TestUploadDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("pdf cv is stored and attached", func(t *testing.T) {
		f := newCandidateFixture(t)
		id, _ := f.uc.Submit(ctx, validCandidate())

		doc, err := f.uc.UploadDocument(ctx, id, domain.DocCV, &domain.DocumentUpload{FileName: "../cv.pdf", Data: pdfBytes})
		require.NoError(t, err)
		assert.Equal(t, "cv.pdf", doc.FileName)
		assert.Equal(t, "application/pdf", doc.FileType)

		stored, err := f.blobs.Fetch(ctx, doc.ContentRef)
		require.NoError(t, err)
		assert.Equal(t, pdfBytes, stored)
		assert.Equal(t, 1, f.scanner.calls)
	})

	t.Run("image certificate is re-encoded as jpeg", func(t *testing.T) {
		f := newCandidateFixture(t)
		id, _ := f.uc.Submit(ctx, validCandidate())

		doc, err := f.uc.UploadDocument(ctx, id, domain.DocIDCopy, &domain.DocumentUpload{FileName: "id.png", Data: pngBytes(t, 64, 32)})
		require.NoError(t, err)
		assert.Equal(t, "id.jpg", doc.FileName)
		assert.Equal(t, "image/jpeg", doc.FileType)
	})

	t.Run("image not accepted for cv slot", func(t *testing.T) {
		f := newCandidateFixture(t)
		id, _ := f.uc.Submit(ctx, validCandidate())

		_, err := f.uc.UploadDocument(ctx, id, domain.DocCV, &domain.DocumentUpload{FileName: "cv.png", Data: pngBytes(t, 8, 8)})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
		assert.Equal(t, 0, f.blobs.Len())
	})

	t.Run("unknown candidate stores nothing", func(t *testing.T) {
		f := newCandidateFixture(t)
		_, err := f.uc.UploadDocument(ctx, 404, domain.DocCV, &domain.DocumentUpload{FileName: "cv.pdf", Data: pdfBytes})
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
		assert.Equal(t, 0, f.blobs.Len())
	})

	t.Run("infected file is rejected", func(t *testing.T) {
		f := newCandidateFixture(t)
		f.scanner.result = antivirus.ScanResult{Infected: true, ThreatName: "Eicar-Test-Signature"}
		id, _ := f.uc.Submit(ctx, validCandidate())

		_, err := f.uc.UploadDocument(ctx, id, domain.DocCV, &domain.DocumentUpload{FileName: "cv.pdf", Data: pdfBytes})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
		assert.Equal(t, 0, f.blobs.Len())
	})

	t.Run("scanner outage fails closed", func(t *testing.T) {
		f := newCandidateFixture(t)
		f.scanner.result = antivirus.ScanResult{Infected: true, Error: errors.New("clamd down")}
		id, _ := f.uc.Submit(ctx, validCandidate())

		_, err := f.uc.UploadDocument(ctx, id, domain.DocCV, &domain.DocumentUpload{FileName: "cv.pdf", Data: pdfBytes})
		assert.True(t, apperror.Is(err, apperror.KindUpstream))
		assert.Equal(t, 0, f.blobs.Len())
	})
}

func TestUploadDocument_CandidateDeletedBeforeAttach(t *testing.T) {
	repo := new(MockCandidateRepo)
	blobs := blobstore.NewMemory("")
	users := memory.NewUserRepository()
	validate := validation.New()
	uc := usecase.NewCandidateUsecase(repo, blobs, usecase.NewAccessUsecase(users, validate), nil, validate)

	repo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Candidate{ID: 7}, nil)
	repo.On("SetDocument", mock.Anything, int64(7), domain.DocCV, mock.Anything).Return("", apperror.NotFound("Candidate not found"))

	_, err := uc.UploadDocument(context.Background(), 7, domain.DocCV, &domain.DocumentUpload{FileName: "cv.pdf", Data: pdfBytes})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, 0, blobs.Len(), "orphaned blob is removed")
}

// uploadDuringDeleteRepo lands one upload between the usecase reaching Delete
// and the repository removing the candidate.
type uploadDuringDeleteRepo struct {
	*memory.CandidateRepository
	beforeDelete func(id int64)
}

func (r *uploadDuringDeleteRepo) Delete(ctx context.Context, id int64) ([]string, error) {
	if hook := r.beforeDelete; hook != nil {
		r.beforeDelete = nil
		hook(id)
	}
	return r.CandidateRepository.Delete(ctx, id)
}

func TestDelete_RemovesDocumentAttachedConcurrently(t *testing.T) {
	repo := &uploadDuringDeleteRepo{CandidateRepository: memory.NewCandidateRepository()}
	blobs := blobstore.NewMemory("")
	users := memory.NewUserRepository()
	require.NoError(t, users.UpsertRole(context.Background(), "admin1", domain.RoleAdmin))
	validate := validation.New()
	uc := usecase.NewCandidateUsecase(repo, blobs, usecase.NewAccessUsecase(users, validate), nil, validate)

	id, err := uc.Submit(context.Background(), validCandidate())
	require.NoError(t, err)
	_, err = uc.UploadDocument(context.Background(), id, domain.DocIDCopy, &domain.DocumentUpload{FileName: "id.pdf", Data: pdfBytes})
	require.NoError(t, err)

	repo.beforeDelete = func(id int64) {
		_, err := uc.UploadDocument(context.Background(), id, domain.DocCV, &domain.DocumentUpload{FileName: "cv.pdf", Data: pdfBytes})
		require.NoError(t, err)
	}
	require.Equal(t, 1, blobs.Len())

	require.NoError(t, uc.Delete(sessionCtx("admin1"), id))
	assert.Equal(t, 0, blobs.Len(), "every stored document is removed with the candidate")
}

func TestAdminOperationsRequireAdmin(t *testing.T) {
	f := newCandidateFixture(t)
	id, err := f.uc.Submit(context.Background(), validCandidate())
	require.NoError(t, err)

	callers := map[string]context.Context{
		"anonymous": context.Background(),
		"user":      sessionCtx("user1"),
		"unknown":   sessionCtx("stranger"),
	}
	for name, ctx := range callers {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.List(ctx)
			assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
			_, err = f.uc.ListByTrade(ctx, "plumb")
			assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
			_, err = f.uc.Export(ctx)
			assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
			_, err = f.uc.DocumentURL(ctx, id, domain.DocCV)
			assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
			_, err = f.uc.DownloadDocument(ctx, id, domain.DocCV)
			assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
			assert.True(t, apperror.Is(f.uc.Update(ctx, id, validCandidate()), apperror.KindUnauthorized))
			assert.True(t, apperror.Is(f.uc.Delete(ctx, id), apperror.KindUnauthorized))
		})
	}

	c, _ := f.repo.GetByID(context.Background(), id)
	assert.NotNil(t, c, "denied delete must not remove the record")
}

func TestAdminCandidateLifecycle(t *testing.T) {
	f := newCandidateFixture(t)
	ctx := context.Background()
	admin := sessionCtx("admin1")

	id1, _ := f.uc.Submit(ctx, validCandidate())
	in := validCandidate()
	in.FullName = "Anele Dlamini"
	in.TradeSkill = "Electrician"
	id2, _ := f.uc.Submit(ctx, in)

	_, err := f.uc.UploadDocument(ctx, id1, domain.DocCV, &domain.DocumentUpload{FileName: "cv.pdf", Data: pdfBytes})
	require.NoError(t, err)
	_, err = f.uc.UploadDocument(ctx, id1, domain.DocQualificationCert, &domain.DocumentUpload{FileName: "trade.pdf", Data: pdfBytes})
	require.NoError(t, err)

	t.Run("list in insertion order", func(t *testing.T) {
		all, err := f.uc.List(admin)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, id1, all[0].ID)
		assert.Equal(t, id2, all[1].ID)
		require.NotNil(t, all[0].CV)
	})

	t.Run("filter by trade", func(t *testing.T) {
		got, err := f.uc.ListByTrade(admin, "electric")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, id2, got[0].ID)
	})

	t.Run("document url and download", func(t *testing.T) {
		url, err := f.uc.DocumentURL(admin, id1, domain.DocCV)
		require.NoError(t, err)
		assert.Contains(t, url, "https://blobs.test/documents/")

		content, err := f.uc.DownloadDocument(admin, id1, domain.DocCV)
		require.NoError(t, err)
		assert.Equal(t, pdfBytes, content.Data)
		assert.Equal(t, "cv.pdf", content.FileName)

		_, err = f.uc.DocumentURL(admin, id1, domain.DocIDCopy)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("update keeps documents", func(t *testing.T) {
		upd := validCandidate()
		upd.TradeSkill = "Master Plumber"
		require.NoError(t, f.uc.Update(admin, id1, upd))

		c, _ := f.repo.GetByID(ctx, id1)
		assert.Equal(t, "Master Plumber", c.TradeSkill)
		assert.NotNil(t, c.CV)

		assert.True(t, apperror.Is(f.uc.Update(admin, 999, upd), apperror.KindNotFound))
	})

	t.Run("export contains every candidate", func(t *testing.T) {
		data, err := f.uc.Export(admin)
		require.NoError(t, err)

		wb, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer wb.Close()
		rows, err := wb.GetRows("Candidates")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "FULL NAME", rows[0][1])
		assert.Equal(t, "Thabo Mokoena", rows[1][1])
		assert.Equal(t, "cv.pdf", rows[1][9])
	})

	t.Run("delete removes record and blobs", func(t *testing.T) {
		require.Equal(t, 2, f.blobs.Len())
		require.NoError(t, f.uc.Delete(admin, id1))

		c, _ := f.repo.GetByID(ctx, id1)
		assert.Nil(t, c)
		assert.Equal(t, 0, f.blobs.Len())

		assert.True(t, apperror.Is(f.uc.Delete(admin, id1), apperror.KindNotFound))
	})
}

func TestListPropagatesRepositoryFailure(t *testing.T) {
	repo := new(MockCandidateRepo)
	users := memory.NewUserRepository()
	require.NoError(t, users.UpsertRole(context.Background(), "admin1", domain.RoleAdmin))
	validate := validation.New()
	uc := usecase.NewCandidateUsecase(repo, blobstore.NewMemory(""), usecase.NewAccessUsecase(users, validate), nil, validate)

	repo.On("List", mock.Anything).Return(nil, errors.New("pool closed"))
	_, err := uc.List(sessionCtx("admin1"))
	assert.True(t, apperror.Is(err, apperror.KindInternal))
}

package v1

import (
	"strconv"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid id")
	}
	return id, nil
}

func pathDocType(c *gin.Context) (domain.DocumentType, error) {
	dt, ok := domain.ParseDocumentType(c.Param("docType"))
	if !ok {
		return "", apperror.BadRequest("Document type must be one of: cv, idCopy, matricCert, qualificationCert")
	}
	return dt, nil
}

type createdResponse struct {
	ID int64 `json:"id"`
}

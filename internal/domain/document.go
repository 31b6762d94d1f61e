package domain

import "time"

// DocumentType names one of the four document slots of a Candidate.
type DocumentType string

const (
	DocCV                DocumentType = "cv"
	DocIDCopy            DocumentType = "idCopy"
	DocMatricCert        DocumentType = "matricCert"
	DocQualificationCert DocumentType = "qualificationCert"
)

// DocumentTypes lists the slots in display order.
var DocumentTypes = []DocumentType{DocCV, DocIDCopy, DocMatricCert, DocQualificationCert}

func ParseDocumentType(s string) (DocumentType, bool) {
	for _, dt := range DocumentTypes {
		if string(dt) == s {
			return dt, true
		}
	}
	return "", false
}

// Document references bytes held by the blob store. ContentRef is opaque to
// everything except the BlobStore that issued it.
type Document struct {
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	ContentRef string    `json:"contentRef"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// DocumentUpload is the raw file received from a public upload call.
type DocumentUpload struct {
	FileName string
	Data     []byte
}

// DocumentContent is a fetched document ready to be streamed to an admin.
type DocumentContent struct {
	Document
	Data []byte
}

package documents

import (
	"context"
	"errors"

	"hindtrade-backend/internal/application/uploads"
	"hindtrade-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("Document not found")
	ErrInvalidDocType = errors.New("Invalid document type")
)

// ExporterResolver maps an account to its exporter id (exporters.Service).
type ExporterResolver interface {
	RequireIDForAccount(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error)
}

// Signer signs storage uploads (uploads.Service).
type Signer interface {
	GetSignedUploadURL(ctx context.Context, bucket, owner, fileName string) (*uploads.UploadResult, error)
}

// Service stores exporter compliance documents.
type Service struct {
	DB        *gorm.DB
	Exporters ExporterResolver
	Uploads   Signer
}

// UploadTicket is the stored document plus the URL the browser uploads to.
type UploadTicket struct {
	Document  *domain.Document `json:"document"`
	UploadURL string           `json:"uploadUrl"`
}

func validDocType(t string) bool {
	for _, d := range domain.DocTypes {
		if d == t {
			return true
		}
	}
	return false
}

// RequestUpload signs an upload in the exporter-documents bucket and records the document.
func (s *Service) RequestUpload(ctx context.Context, accountID uuid.UUID, docType, fileName string) (*UploadTicket, error) {
	if !validDocType(docType) {
		return nil, ErrInvalidDocType
	}
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	signed, err := s.Uploads.GetSignedUploadURL(ctx, uploads.BucketExporterDocuments, exporterID.String(), fileName)
	if err != nil {
		return nil, err
	}
	doc := &domain.Document{
		ExporterID:  exporterID,
		DocType:     docType,
		FileName:    uploads.SanitizeFileName(fileName),
		StoragePath: signed.Path,
		PublicURL:   signed.PublicURL,
	}
	if err := s.DB.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return &UploadTicket{Document: doc, UploadURL: signed.UploadURL}, nil
}

// List returns the account's documents, newest first.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]domain.Document, error) {
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var docs []domain.Document
	if err := s.DB.WithContext(ctx).Where("exporter_id = ?", exporterID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Delete removes the document record. The stored object is left for storage lifecycle rules.
func (s *Service) Delete(ctx context.Context, accountID, documentID uuid.UUID) error {
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Where("id = ? AND exporter_id = ?", documentID, exporterID).Delete(&domain.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

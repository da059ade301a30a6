package shipments

import (
	"context"
	"errors"
	"strings"
	"time"

	"hindtrade-backend/internal/domain"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("Shipment not found")
	ErrInvalidStatus     = errors.New("Invalid shipment status")
	ErrInvalidTransition = errors.New("Shipment cannot move to that status")
)

// allowedFrom lists, per target status, the statuses a shipment may leave.
var allowedFrom = map[string][]string{
	domain.ShipmentInTransit: {domain.ShipmentBooked},
	domain.ShipmentDelivered: {domain.ShipmentInTransit},
	domain.ShipmentCancelled: {domain.ShipmentBooked, domain.ShipmentInTransit},
}

// ExporterResolver maps an account to its exporter id (exporters.Service).
type ExporterResolver interface {
	RequireIDForAccount(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error)
}

// Service keeps an exporter's shipment log.
type Service struct {
	DB        *gorm.DB
	Exporters ExporterResolver
	Now       func() time.Time
}

// Input is the create body.
type Input struct {
	Reference          string     `json:"reference" validate:"required,max=64"`
	DestinationCountry string     `json:"destination_country" validate:"required,max=100"`
	Port               string     `json:"port" validate:"max=100"`
	ShippedAt          *time.Time `json:"shipped_at"`
	Notes              string     `json:"notes" validate:"max=2000"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create logs a booked shipment.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, in Input) (*domain.ShipmentLog, error) {
	in.Reference = strings.TrimSpace(in.Reference)
	in.DestinationCountry = strings.TrimSpace(in.DestinationCountry)
	in.Port = strings.TrimSpace(in.Port)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	sh := &domain.ShipmentLog{
		ExporterID:         exporterID,
		Reference:          in.Reference,
		DestinationCountry: in.DestinationCountry,
		Port:               in.Port,
		Status:             domain.ShipmentBooked,
		ShippedAt:          in.ShippedAt,
		Notes:              in.Notes,
	}
	if err := s.DB.WithContext(ctx).Create(sh).Error; err != nil {
		return nil, err
	}
	return sh, nil
}

// List returns the account's shipments, newest first.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]domain.ShipmentLog, error) {
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var list []domain.ShipmentLog
	if err := s.DB.WithContext(ctx).Where("exporter_id = ?", exporterID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus advances a shipment: booked -> in_transit -> delivered, or cancels it.
func (s *Service) UpdateStatus(ctx context.Context, accountID, shipmentID uuid.UUID, status string) (*domain.ShipmentLog, error) {
	from, ok := allowedFrom[status]
	if !ok {
		return nil, ErrInvalidStatus
	}
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var out domain.ShipmentLog
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur domain.ShipmentLog
		if err := tx.Where("id = ? AND exporter_id = ?", shipmentID, exporterID).First(&cur).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		upd := map[string]interface{}{"status": status}
		if status == domain.ShipmentInTransit && cur.ShippedAt == nil {
			upd["shipped_at"] = s.now()
		}
		res := tx.Model(&domain.ShipmentLog{}).
			Where("id = ? AND status IN ?", shipmentID, from).
			Updates(upd)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		return tx.Where("id = ?", shipmentID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

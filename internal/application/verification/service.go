package verification

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"hindtrade-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	maxCardIDAttempts = 5
	maxNotesLength    = 2000
)

// Filter values accepted by ListRequests.
const (
	FilterAll      = "all"
	FilterPending  = domain.VerificationPending
	FilterApproved = domain.VerificationApproved
	FilterRejected = domain.VerificationRejected
)

// Notifier receives decision notifications after commit. Nil = no-op.
type Notifier interface {
	SendVerificationApproved(ctx context.Context, toEmail, name, cardID, publicURL string) error
	SendVerificationRejected(ctx context.Context, toEmail, name, notes string) error
}

// CardSettings controls the URLs written onto issued trade cards.
type CardSettings struct {
	PublicBaseURL string
	QRServiceURL  string
	QRSize        string
}

// Service runs the exporter verification workflow.
type Service struct {
	DB       *gorm.DB
	Cards    CardSettings
	Notifier Notifier
	Now      func() time.Time
	Intn     func(int) int
}

// ExporterInput is the self-service part of an exporter submitted for verification.
type ExporterInput struct {
	CompanyName string           `json:"company_name" validate:"max=200"`
	GSTNumber   string           `json:"gst_number" validate:"max=15"`
	IECCode     string           `json:"iec_code" validate:"max=10"`
	AddressLine string           `json:"address_line" validate:"max=300"`
	City        string           `json:"city" validate:"max=100"`
	State       string           `json:"state" validate:"max=100"`
	Pincode     string           `json:"pincode" validate:"max=10"`
	Country     string           `json:"country" validate:"max=100"`
	Bio         string           `json:"bio" validate:"max=2000"`
	Products    []string         `json:"products"`
	Markets     []string         `json:"markets"`
	Website     string           `json:"website" validate:"omitempty,url"`
	NetWorth    *decimal.Decimal `json:"net_worth"`
}

// RequestWithExporter is a request joined with its exporter's public fields.
type RequestWithExporter struct {
	domain.VerificationRequest
	Exporter *domain.ExporterPublic `json:"exporter"`
}

// ApproveResult is returned by Approve.
type ApproveResult struct {
	TradeCard *domain.TradeCard `json:"trade_card"`
	CardID    string            `json:"card_id"`
	PublicURL string            `json:"public_url"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) intn(n int) int {
	if s.Intn != nil {
		return s.Intn(n)
	}
	return rand.Intn(n)
}

// SubmitForVerification saves the exporter for accountID and opens a pending request.
func (s *Service) SubmitForVerification(ctx context.Context, accountID uuid.UUID, in ExporterInput) (*domain.VerificationRequest, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.GSTNumber = strings.ToUpper(strings.TrimSpace(in.GSTNumber))
	if in.CompanyName == "" || in.GSTNumber == "" {
		return nil, ErrMissingFields
	}

	var req *domain.VerificationRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exp domain.Exporter
		err := tx.Where("account_id = ?", accountID).First(&exp).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			exp = domain.Exporter{AccountID: accountID}
			applyInput(&exp, in)
			exp.VerificationStatus = domain.VerificationPending
			if err := tx.Create(&exp).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if exp.VerificationStatus == domain.VerificationApproved {
				return ErrAlreadyVerified
			}
			var pending int64
			if err := tx.Model(&domain.VerificationRequest{}).
				Where("exporter_id = ? AND status = ?", exp.ExporterID, domain.VerificationPending).
				Count(&pending).Error; err != nil {
				return err
			}
			if pending > 0 {
				return ErrPendingRequestExists
			}
			applyInput(&exp, in)
			exp.VerificationStatus = domain.VerificationPending
			if err := tx.Save(&exp).Error; err != nil {
				return err
			}
		}

		req = &domain.VerificationRequest{
			ExporterID:  exp.ExporterID,
			Status:      domain.VerificationPending,
			SubmittedAt: s.now(),
		}
		return tx.Create(req).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyVerified) || errors.Is(err, ErrPendingRequestExists) {
			return nil, err
		}
		if isDuplicate(err) {
			return nil, ErrPendingRequestExists
		}
		return nil, fmt.Errorf("%w: %w", ErrCreationFailed, err)
	}
	return req, nil
}

// applyInput patches exp with the submitted fields. Blank optional fields keep the stored value.
func applyInput(exp *domain.Exporter, in ExporterInput) {
	exp.CompanyName = in.CompanyName
	exp.GSTNumber = in.GSTNumber
	patch := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	patch(&exp.IECCode, strings.ToUpper(in.IECCode))
	patch(&exp.AddressLine, in.AddressLine)
	patch(&exp.City, in.City)
	patch(&exp.State, in.State)
	patch(&exp.Pincode, in.Pincode)
	patch(&exp.Country, in.Country)
	if exp.Country == "" {
		exp.Country = "India"
	}
	patch(&exp.Bio, in.Bio)
	patch(&exp.Website, in.Website)
	if in.Products != nil {
		exp.Products = in.Products
	}
	if in.Markets != nil {
		exp.Markets = in.Markets
	}
	if in.NetWorth != nil {
		exp.NetWorth = decimal.NewNullDecimal(*in.NetWorth)
	}
}

// ListRequests returns requests matching filter joined with exporter public fields, newest first.
func (s *Service) ListRequests(ctx context.Context, filter string) ([]RequestWithExporter, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	q := s.DB.WithContext(ctx).Model(&domain.VerificationRequest{})
	switch filter {
	case "", FilterAll:
	case FilterPending, FilterApproved, FilterRejected:
		q = q.Where("status = ?", filter)
	default:
		return nil, ErrInvalidFilter
	}

	var reqs []domain.VerificationRequest
	if err := q.Order("submitted_at DESC").Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return []RequestWithExporter{}, nil
	}

	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ExporterID)
	}
	var exporters []domain.Exporter
	if err := s.DB.WithContext(ctx).Where("exporter_id IN ?", ids).Find(&exporters).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.ExporterPublic, len(exporters))
	for i := range exporters {
		byID[exporters[i].ExporterID] = exporters[i].Public()
	}

	out := make([]RequestWithExporter, 0, len(reqs))
	for _, r := range reqs {
		row := RequestWithExporter{VerificationRequest: r}
		if pub, ok := byID[r.ExporterID]; ok {
			p := pub
			row.Exporter = &p
		}
		out = append(out, row)
	}
	return out, nil
}

// claimPending moves a pending request to status. Zero rows is resolved to ErrNotFound or ErrAlreadyDecided.
func claimPending(tx *gorm.DB, requestID, exporterID uuid.UUID, updates map[string]interface{}) error {
	res := tx.Model(&domain.VerificationRequest{}).
		Where("id = ? AND exporter_id = ? AND status = ?", requestID, exporterID, domain.VerificationPending).
		Updates(updates)
	if res.Error != nil {
		return stepErr(StepVerificationUpdate, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var existing domain.VerificationRequest
	err := tx.Where("id = ? AND exporter_id = ?", requestID, exporterID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return stepErr(StepVerificationUpdate, err)
	}
	return ErrAlreadyDecided
}

// Approve decides a pending request and issues the exporter's trade card in one transaction.
func (s *Service) Approve(ctx context.Context, requestID, exporterID, reviewerID uuid.UUID) (*ApproveResult, error) {
	now := s.now()
	var result *ApproveResult
	var exp domain.Exporter

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := claimPending(tx, requestID, exporterID, map[string]interface{}{
			"status":      domain.VerificationApproved,
			"reviewer_id": reviewerID,
			"reviewed_at": now,
		}); err != nil {
			return err
		}

		if err := tx.Select("exporter_id", "account_id", "company_name", "city").
			Where("exporter_id = ?", exporterID).First(&exp).Error; err != nil {
			return stepErr(StepExporterFetch, err)
		}

		res := tx.Model(&domain.Exporter{}).Where("exporter_id = ?", exporterID).Updates(map[string]interface{}{
			"verified":            true,
			"verification_status": domain.VerificationApproved,
			"trust_score":         domain.TrustScoreApproved,
		})
		if res.Error != nil {
			return stepErr(StepExporterUpdate, res.Error)
		}

		card, err := s.issueCard(tx, exp, now)
		if err != nil {
			return err
		}

		audit := domain.NewAuditLog(reviewerID, "verification.approved", "verification_request", requestID,
			map[string]string{"status": domain.VerificationPending},
			map[string]interface{}{"status": domain.VerificationApproved, "card_id": card.CardID, "trust_score": card.TrustScore})
		if err := tx.Create(&audit).Error; err != nil {
			return stepErr(StepAuditWrite, err)
		}

		result = &ApproveResult{TradeCard: card, CardID: card.CardID, PublicURL: card.PublicURL}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.notify(ctx, exp.AccountID, exp.CompanyName, func(to, name string) error {
			return s.Notifier.SendVerificationApproved(ctx, to, name, result.CardID, result.PublicURL)
		})
	}
	return result, nil
}

// issueCard deactivates earlier cards and creates the active one with a card id not yet in use.
func (s *Service) issueCard(tx *gorm.DB, exp domain.Exporter, now time.Time) (*domain.TradeCard, error) {
	if err := tx.Model(&domain.TradeCard{}).
		Where("exporter_id = ? AND is_active = ?", exp.ExporterID, true).
		Update("is_active", false).Error; err != nil {
		return nil, stepErr(StepTradeCardCreate, err)
	}

	cardID := ""
	for attempt := 0; attempt < maxCardIDAttempts; attempt++ {
		candidate := GenerateCardID(exp.City, now.Year(), s.intn)
		var taken int64
		if err := tx.Model(&domain.TradeCard{}).Where("card_id = ?", candidate).Count(&taken).Error; err != nil {
			return nil, stepErr(StepTradeCardCreate, err)
		}
		if taken == 0 {
			cardID = candidate
			break
		}
	}
	if cardID == "" {
		return nil, stepErr(StepTradeCardCreate, ErrCardIDExhausted)
	}

	publicURL := PublicURL(s.Cards.PublicBaseURL, cardID)
	card := &domain.TradeCard{
		ExporterID: exp.ExporterID,
		CardID:     cardID,
		TrustScore: domain.TrustScoreApproved,
		IsActive:   true,
		PublicURL:  publicURL,
		QRCodeURL:  QRCodeURL(s.Cards.QRServiceURL, s.Cards.QRSize, publicURL),
		IssuedAt:   now,
	}
	if err := tx.Create(card).Error; err != nil {
		return nil, stepErr(StepTradeCardCreate, err)
	}
	return card, nil
}

// Reject decides a pending request as rejected and lowers the exporter's trust score.
func (s *Service) Reject(ctx context.Context, requestID, exporterID, reviewerID uuid.UUID, notes string) (*domain.VerificationRequest, error) {
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, ErrNotesTooLong
	}
	now := s.now()
	var req domain.VerificationRequest
	var exp domain.Exporter

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := claimPending(tx, requestID, exporterID, map[string]interface{}{
			"status":      domain.VerificationRejected,
			"notes":       notes,
			"reviewer_id": reviewerID,
			"reviewed_at": now,
		}); err != nil {
			return err
		}

		res := tx.Model(&domain.Exporter{}).Where("exporter_id = ?", exporterID).Updates(map[string]interface{}{
			"verified":            false,
			"verification_status": domain.VerificationRejected,
			"trust_score":         domain.TrustScoreRejected,
		})
		if res.Error != nil {
			return stepErr(StepExporterUpdate, res.Error)
		}
		if res.RowsAffected == 0 {
			return stepErr(StepExporterUpdate, gorm.ErrRecordNotFound)
		}

		audit := domain.NewAuditLog(reviewerID, "verification.rejected", "verification_request", requestID,
			map[string]string{"status": domain.VerificationPending},
			map[string]interface{}{"status": domain.VerificationRejected, "notes": notes, "trust_score": domain.TrustScoreRejected})
		if err := tx.Create(&audit).Error; err != nil {
			return stepErr(StepAuditWrite, err)
		}

		if err := tx.Where("id = ?", requestID).First(&req).Error; err != nil {
			return stepErr(StepVerificationUpdate, err)
		}
		return tx.Select("exporter_id", "account_id", "company_name").
			Where("exporter_id = ?", exporterID).First(&exp).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.notify(ctx, exp.AccountID, exp.CompanyName, func(to, name string) error {
			return s.Notifier.SendVerificationRejected(ctx, to, name, notes)
		})
	}
	return &req, nil
}

// UpdateNotes changes the reviewer notes on any request. Status is left alone.
func (s *Service) UpdateNotes(ctx context.Context, requestID uuid.UUID, notes string) (*domain.VerificationRequest, error) {
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, ErrNotesTooLong
	}
	res := s.DB.WithContext(ctx).Model(&domain.VerificationRequest{}).
		Where("id = ?", requestID).
		Update("notes", notes)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var req domain.VerificationRequest
	if err := s.DB.WithContext(ctx).Where("id = ?", requestID).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// GetLatestForExporter returns the most recent request of the account's exporter, or nil.
func (s *Service) GetLatestForExporter(ctx context.Context, accountID uuid.UUID) (*domain.VerificationRequest, error) {
	var exp domain.Exporter
	err := s.DB.WithContext(ctx).Select("exporter_id").Where("account_id = ?", accountID).First(&exp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var req domain.VerificationRequest
	err = s.DB.WithContext(ctx).Where("exporter_id = ?", exp.ExporterID).
		Order("submitted_at DESC").Order("created_at DESC").
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ctxLogger prefers the request logger (tagged with the trace id) over the global one.
func ctxLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// notify looks up the account email and sends best-effort; failures are only logged.
func (s *Service) notify(ctx context.Context, accountID uuid.UUID, companyName string, send func(to, name string) error) {
	var acc domain.Account
	if err := s.DB.WithContext(ctx).Select("account_id", "email").Where("account_id = ?", accountID).First(&acc).Error; err != nil {
		ctxLogger(ctx).Warn().Err(err).Str("account_id", accountID.String()).Msg("verification: notification recipient lookup failed")
		return
	}
	name := companyName
	var prof domain.Profile
	if err := s.DB.WithContext(ctx).Select("account_id", "full_name").Where("account_id = ?", accountID).First(&prof).Error; err == nil && prof.FullName != "" {
		name = prof.FullName
	}
	if err := send(acc.Email, name); err != nil {
		ctxLogger(ctx).Warn().Err(err).Str("account_id", accountID.String()).Msg("verification: decision email failed")
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

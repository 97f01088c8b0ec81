package passes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"festpass/internal/kafka"
	"festpass/internal/logger"
	"festpass/internal/models"
	"festpass/internal/qr"
	"festpass/internal/token"
	"festpass/internal/utils"
)

var (
	ErrAlreadyUsed = errors.New("pass is already used")
	ErrNotUsed     = errors.New("pass is not used")
)

type PassDBLayer interface {
	GetPass(ctx context.Context, passID string) (*models.Pass, error)
	PutPass(ctx context.Context, pass models.Pass) error
	DeletePass(ctx context.Context, passID string) error
}

type PaymentDBLayer interface {
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	PutPayment(ctx context.Context, payment models.Payment) error
}

type AuditAppender interface {
	AppendAudit(ctx context.Context, entry models.AuditLogEntry) error
}

type KafkaPublisher interface {
	PublishCheckin(event kafka.CheckinEvent) error
	PublishAudit(event kafka.AuditEvent) error
}

// Actor identifies who performed an admin mutation, for the audit log.
type Actor struct {
	UserID   string
	SourceIP string
}

// PassService applies lifecycle transitions to single pass documents.
// Every transition writes one audit entry with full before/after
// snapshots. Writes are atomic per document; there are no
// multi-document transactions anywhere in this service.
type PassService struct {
	DB       PassDBLayer
	Payments PaymentDBLayer
	Audit    AuditAppender
	Codec    *token.Codec
	QR       *qr.Generator
	Kafka    KafkaPublisher
	Logger   *logger.Logger
}

func NewPassService(db PassDBLayer, payments PaymentDBLayer, audit AuditAppender,
	codec *token.Codec, qrGen *qr.Generator, producer KafkaPublisher, log *logger.Logger) *PassService {
	return &PassService{
		DB:       db,
		Payments: payments,
		Audit:    audit,
		Codec:    codec,
		QR:       qrGen,
		Kafka:    producer,
		Logger:   log,
	}
}

func (s *PassService) GetPass(ctx context.Context, passID string) (*models.Pass, error) {
	return s.DB.GetPass(ctx, passID)
}

// MarkUsed consumes the entitlement: status=used, UsedAt stamped,
// ScannedBy recorded. This is the explicit, audited confirmation step
// after a scan; verification itself never calls it.
func (s *PassService) MarkUsed(ctx context.Context, passID string, actor Actor) (*models.Pass, error) {
	pass, err := s.DB.GetPass(ctx, passID)
	if err != nil {
		return nil, err
	}
	if pass.IsUsed() {
		return nil, ErrAlreadyUsed
	}

	before := *pass
	now := time.Now()
	pass.Status = models.PassStatusUsed
	pass.UsedAt = &now
	pass.ScannedBy = actor.UserID

	if err := s.DB.PutPass(ctx, *pass); err != nil {
		return nil, fmt.Errorf("failed to mark pass used: %w", err)
	}
	s.audit(ctx, models.AuditActionMarkUsed, before, *pass, actor)

	if err := s.Kafka.PublishCheckin(kafka.CheckinEvent{
		PassID:    pass.PassID,
		PassType:  pass.PassType,
		ScannedBy: actor.UserID,
		UsedAt:    now,
	}); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("checkin publish failed for %s: %v", pass.PassID, err))
	}

	return pass, nil
}

// RevertUsed undoes an accidental or duplicate scan: clears UsedAt and
// ScannedBy, status back to paid.
func (s *PassService) RevertUsed(ctx context.Context, passID string, actor Actor) (*models.Pass, error) {
	pass, err := s.DB.GetPass(ctx, passID)
	if err != nil {
		return nil, err
	}
	if !pass.IsUsed() {
		return nil, ErrNotUsed
	}

	before := *pass
	pass.Status = models.PassStatusPaid
	pass.UsedAt = nil
	pass.ScannedBy = ""

	if err := s.DB.PutPass(ctx, *pass); err != nil {
		return nil, fmt.Errorf("failed to revert pass: %w", err)
	}
	s.audit(ctx, models.AuditActionRevertUsed, before, *pass, actor)
	return pass, nil
}

// Archive soft-deletes a pass. Archived passes are excluded from all
// reporting and counts but retained for audit.
func (s *PassService) Archive(ctx context.Context, passID string, actor Actor) (*models.Pass, error) {
	pass, err := s.DB.GetPass(ctx, passID)
	if err != nil {
		return nil, err
	}

	before := *pass
	now := time.Now()
	pass.Archived = true
	pass.ArchivedAt = &now
	pass.ArchivedBy = actor.UserID

	if err := s.DB.PutPass(ctx, *pass); err != nil {
		return nil, fmt.Errorf("failed to archive pass: %w", err)
	}
	s.audit(ctx, models.AuditActionArchive, before, *pass, actor)
	return pass, nil
}

func (s *PassService) Unarchive(ctx context.Context, passID string, actor Actor) (*models.Pass, error) {
	pass, err := s.DB.GetPass(ctx, passID)
	if err != nil {
		return nil, err
	}

	before := *pass
	pass.Archived = false
	pass.ArchivedAt = nil
	pass.ArchivedBy = ""

	if err := s.DB.PutPass(ctx, *pass); err != nil {
		return nil, fmt.Errorf("failed to unarchive pass: %w", err)
	}
	s.audit(ctx, models.AuditActionUnarchive, before, *pass, actor)
	return pass, nil
}

// HardDelete removes the document entirely. Superadmin only; the
// audit entry keeps the last snapshot.
func (s *PassService) HardDelete(ctx context.Context, passID string, actor Actor) error {
	pass, err := s.DB.GetPass(ctx, passID)
	if err != nil {
		return err
	}

	if err := s.DB.DeletePass(ctx, passID); err != nil {
		return fmt.Errorf("failed to delete pass: %w", err)
	}
	s.audit(ctx, models.AuditActionHardDelete, *pass, models.Pass{PassID: passID}, actor)
	return nil
}

// RegenerateToken re-signs the pass id with a fresh expiry, for
// lost-QR resends. Previously issued tokens stay valid until their
// own expiry; there is no revocation list.
func (s *PassService) RegenerateToken(ctx context.Context, passID string, actor Actor) (*models.Pass, []byte, error) {
	pass, err := s.DB.GetPass(ctx, passID)
	if err != nil {
		return nil, nil, err
	}

	newToken, err := s.Codec.Sign(pass.PassID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign token: %w", err)
	}

	before := *pass
	pass.Token = newToken
	if err := s.DB.PutPass(ctx, *pass); err != nil {
		return nil, nil, fmt.Errorf("failed to store regenerated token: %w", err)
	}
	s.audit(ctx, models.AuditActionRegenerate, before, *pass, actor)

	png, err := s.QR.GeneratePayloadPNG(qr.Payload{
		PassID:   pass.PassID,
		UserID:   pass.UserID,
		PassType: pass.PassType,
		Token:    newToken,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render QR: %w", err)
	}

	return pass, png, nil
}

// ForceVerifyPayment flips a payment to success by admin decision,
// e.g. a gateway callback that never arrived.
func (s *PassService) ForceVerifyPayment(ctx context.Context, paymentID string, actor Actor) (*models.Payment, error) {
	payment, err := s.Payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	before := *payment
	payment.Status = models.PaymentStatusSuccess
	payment.UpdatedAt = time.Now()

	if err := s.Payments.PutPayment(ctx, *payment); err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	s.auditDoc(ctx, models.AuditActionVerifyPayment, "payments", paymentID, before, *payment, actor)
	return payment, nil
}

func (s *PassService) audit(ctx context.Context, action string, before, after models.Pass, actor Actor) {
	s.auditDoc(ctx, action, "passes", before.PassID, before, after, actor)
}

// auditDoc writes the audit entry; failures are logged, not returned,
// so a broken audit store never blocks a door scan confirmation.
func (s *PassService) auditDoc(ctx context.Context, action, collection, targetID string,
	before, after interface{}, actor Actor) {

	entry := models.AuditLogEntry{
		EntryID:          utils.GenerateAuditID(),
		Actor:            actor.UserID,
		Action:           action,
		TargetCollection: collection,
		TargetID:         targetID,
		Before:           snapshot(before),
		After:            snapshot(after),
		SourceIP:         actor.SourceIP,
		Timestamp:        time.Now(),
	}
	if err := s.Audit.AppendAudit(ctx, entry); err != nil {
		s.Logger.Error("AUDIT", fmt.Sprintf("failed to append audit entry for %s %s: %v", action, targetID, err))
		return
	}
	s.Logger.LogAudit(action, targetID, actor.UserID)
}

func snapshot(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

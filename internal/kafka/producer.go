package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"festpass/internal/config"
	"festpass/internal/logger"
)

// CheckinEvent is streamed when a pass is consumed at the door.
type CheckinEvent struct {
	PassID    string    `json:"pass_id"`
	PassType  string    `json:"pass_type"`
	ScannedBy string    `json:"scanned_by"`
	UsedAt    time.Time `json:"used_at"`
}

// AuditEvent mirrors the audit-log entry headline for downstream
// consumers.
type AuditEvent struct {
	Action           string    `json:"action"`
	TargetCollection string    `json:"target_collection"`
	TargetID         string    `json:"target_id"`
	Actor            string    `json:"actor"`
	Timestamp        time.Time `json:"timestamp"`
}

// Producer publishes check-in and audit events. Disabled or mock-mode
// producers log and drop; publishing is fire-and-forget either way.
type Producer struct {
	checkinWriter *kafka.Writer
	auditWriter   *kafka.Writer
	cfg           config.Kafka
	log           *logger.Logger
}

func NewProducer(cfg config.Kafka, log *logger.Logger) *Producer {
	p := &Producer{cfg: cfg, log: log}
	if cfg.Enabled && !cfg.MockMode {
		p.checkinWriter = kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topics.CheckinEvents,
		})
		p.auditWriter = kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topics.AuditEvents,
		})
	}
	return p
}

func (p *Producer) PublishCheckin(event CheckinEvent) error {
	return p.publish(p.checkinWriter, p.cfg.Topics.CheckinEvents, event.PassID, event)
}

func (p *Producer) PublishAudit(event AuditEvent) error {
	return p.publish(p.auditWriter, p.cfg.Topics.AuditEvents, event.TargetID, event)
}

func (p *Producer) publish(writer *kafka.Writer, topic, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if !p.cfg.Enabled {
		return nil
	}
	if p.cfg.MockMode || writer == nil {
		p.log.Info("KAFKA", "mock publish to "+topic+": "+string(msgBytes))
		return nil
	}

	return writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(key),
		Value: msgBytes,
	})
}

func (p *Producer) Close() {
	if p.checkinWriter != nil {
		_ = p.checkinWriter.Close()
	}
	if p.auditWriter != nil {
		_ = p.auditWriter.Close()
	}
}

package services

import (
	"time"

	"github.com/geseib/personalboard/internal/models"
	"github.com/geseib/personalboard/pkg/logger"
	"gorm.io/gorm"
)

type AuditEntry struct {
	Action    string
	Code      string
	ClientID  string
	Details   map[string]interface{}
	IPAddress string
	RequestID string
}

// AuditService writes claim-attempt audit rows off the request path. Rows
// are dropped (with a warning) rather than blocking a claim when the queue
// is full.
type AuditService struct {
	DB    *gorm.DB
	queue chan models.AuditLog
}

func NewAuditService(db *gorm.DB) *AuditService {
	s := &AuditService{
		DB:    db,
		queue: make(chan models.AuditLog, 1000),
	}
	go s.processQueue()
	return s
}

func (s *AuditService) LogAsync(entry AuditEntry) {
	row := models.AuditLog{
		Action:    entry.Action,
		Code:      entry.Code,
		ClientID:  entry.ClientID,
		Details:   entry.Details,
		IPAddress: entry.IPAddress,
		RequestID: entry.RequestID,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case s.queue <- row:
	default:
		logger.Warn("audit_queue_full", map[string]interface{}{
			"action": entry.Action,
		})
	}
}

func (s *AuditService) processQueue() {
	for row := range s.queue {
		if err := s.DB.Create(&row).Error; err != nil {
			logger.Error("audit_write_failed", err, map[string]interface{}{
				"action": row.Action,
			})
		}
	}
}

package outbox

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
)

// DLQRepository stores terminally failed events.
type DLQRepository struct{}

func NewDLQRepository() *DLQRepository {
	return &DLQRepository{}
}

func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if !entry.ErrorReason.IsValid() {
		return fmt.Errorf("invalid dlq reason %q", entry.ErrorReason)
	}
	return tx.Create(&entry).Error
}

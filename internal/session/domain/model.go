package domain

import (
	"time"

	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PaymentCollection groups the sessions opened for a single checkout. A
// collection completes when one of its sessions reaches captured.
type PaymentCollection struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Amount      int64        `gorm:"not null" json:"amount"`
	Currency    string       `gorm:"type:text;not null" json:"currency"`
	Region      string       `gorm:"type:text" json:"region,omitempty"`
	CompletedAt *time.Time   `gorm:"index" json:"completed_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (PaymentCollection) TableName() string { return "payment_collections" }

// PaymentSession is one provider-specific attempt to collect a payment. Data
// is the adapter-owned blob; everything outside the adapter treats it as
// opaque.
type PaymentSession struct {
	ID           snowflake.ID         `gorm:"primaryKey" json:"id"`
	CollectionID snowflake.ID         `gorm:"not null;index" json:"collection_id"`
	Provider     string               `gorm:"type:text;not null;index" json:"provider"`
	Reference    string               `gorm:"type:text;not null;index" json:"reference"`
	Status       gatewaydomain.Status `gorm:"type:text;not null;index" json:"status"`
	Amount       int64                `gorm:"not null" json:"amount"`
	Currency     string               `gorm:"type:text;not null" json:"currency"`
	ExternalID   string               `gorm:"type:text" json:"external_id,omitempty"`
	Data         datatypes.JSONMap    `gorm:"type:json" json:"data"`
	CreatedAt    time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (PaymentSession) TableName() string { return "payment_sessions" }

// GatewayData converts the stored blob into the adapter's working type.
func (s *PaymentSession) GatewayData() gatewaydomain.Data {
	data := make(gatewaydomain.Data, len(s.Data))
	for key, value := range s.Data {
		data[key] = value
	}
	return data
}

// SetGatewayData replaces the stored blob with the adapter's result.
func (s *PaymentSession) SetGatewayData(data gatewaydomain.Data) {
	blob := make(datatypes.JSONMap, len(data))
	for key, value := range data {
		blob[key] = value
	}
	s.Data = blob
}

package model

import (
	"strconv"
	"time"
)

// StageNames are the canonical labels for the seven delivery stages,
// indexed by stage-1.
var StageNames = []string{
	"Order Placed",
	"Buyer Associated",
	"Processing",
	"Packed",
	"Shipped",
	"Out for Delivery",
	"Delivered",
}

// StageName returns the canonical label for a stage, or the numeric stage as
// a string when it falls outside the known seven.
func StageName(stage int) string {
	if stage >= 1 && stage <= len(StageNames) {
		return StageNames[stage-1]
	}
	return strconv.Itoa(stage)
}

// HistoryEntry is an append-only audit record attached to an order. Stage is
// a descriptive label, not the numeric stage: entries like "Seller Assigned"
// or "Deleted" annotate events outside the seven-stage progression.
type HistoryEntry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   string    `gorm:"size:36;index;not null" json:"-"`
	Stage     string    `gorm:"size:64;not null" json:"stage"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	ActorID   *string   `gorm:"size:36" json:"actorId,omitempty"`
	ActorName string    `gorm:"size:255" json:"actorName,omitempty"`
	Action    string    `gorm:"size:255" json:"action,omitempty"`
}

func (HistoryEntry) TableName() string {
	return "order_history_entries"
}

// Order is the central aggregate: a single-buyer delivery order moving
// through stages 1..7.
type Order struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Items        []string       `gorm:"serializer:json;not null" json:"items"`
	CurrentStage int            `gorm:"not null;default:1" json:"currentStage"`
	BuyerID      *string        `gorm:"size:36;index" json:"buyerId"`
	SellerID     *string        `gorm:"size:36;index" json:"sellerId"`
	History      []HistoryEntry `gorm:"foreignKey:OrderID" json:"history"`
	IsDeleted    bool           `gorm:"not null;default:false" json:"isDeleted"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`

	Buyer  *User `gorm:"foreignKey:BuyerID" json:"-"`
	Seller *User `gorm:"foreignKey:SellerID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// StageName returns the label for the order's current stage.
func (o *Order) StageName() string {
	return StageName(o.CurrentStage)
}

// IsActive reports whether the order still counts against the buyer's
// one-active-order limit: not deleted and not yet delivered.
func (o *Order) IsActive() bool {
	return !o.IsDeleted && o.CurrentStage < 7
}

// AddHistory appends one audit entry. History is append-only; nothing ever
// removes or reorders entries.
func (o *Order) AddHistory(stage string, actorID *string, actorName, action string) {
	o.History = append(o.History, HistoryEntry{
		OrderID:   o.ID,
		Stage:     stage,
		Timestamp: time.Now(),
		ActorID:   actorID,
		ActorName: actorName,
		Action:    action,
	})
}

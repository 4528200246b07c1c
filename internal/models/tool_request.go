package models

import (
	"fmt"
	"time"
)

// ToolRequest is a user's request to borrow an inventory item.
// At most one non-rejected request may exist per code.
type ToolRequest struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	User      *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ToolID    uint            `gorm:"not null;index" json:"tool_id"`
	Tool      *InventoryItem  `gorm:"foreignKey:ToolID" json:"tool,omitempty"`
	StatusID  RequestStatusID `gorm:"not null;index" json:"status_id"`
	Status    *RequestStatus  `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Code      string          `gorm:"size:64;not null;uniqueIndex:idx_tool_requests_active_code,where:status_id <> 2" json:"code"`
	CreatedAt time.Time       `json:"created_at"`
}

// StatusBuckets groups a user's requests by status, each in retrieval order.
type StatusBuckets struct {
	Pending   []ToolRequest `json:"pending"`
	Approved  []ToolRequest `json:"approved"`
	Rejected  []ToolRequest `json:"rejected"`
	Delivered []ToolRequest `json:"delivered"`
}

// PartitionByStatus places every request in exactly one bucket. A status outside
// the enumeration is an error rather than a silent drop.
func PartitionByStatus(requests []ToolRequest) (StatusBuckets, error) {
	b := StatusBuckets{
		Pending:   []ToolRequest{},
		Approved:  []ToolRequest{},
		Rejected:  []ToolRequest{},
		Delivered: []ToolRequest{},
	}
	for _, r := range requests {
		switch r.StatusID {
		case StatusPending:
			b.Pending = append(b.Pending, r)
		case StatusApproved:
			b.Approved = append(b.Approved, r)
		case StatusRejected:
			b.Rejected = append(b.Rejected, r)
		case StatusDelivered:
			b.Delivered = append(b.Delivered, r)
		default:
			return StatusBuckets{}, fmt.Errorf("tool request %d has unknown status %d", r.ID, int(r.StatusID))
		}
	}
	return b, nil
}

// Active returns the number of non-rejected requests in the buckets.
func (b StatusBuckets) Active() int {
	return len(b.Pending) + len(b.Approved) + len(b.Delivered)
}

// UserRequestCount is the response of the current-user count operation.
type UserRequestCount struct {
	UserID uint  `json:"userId"`
	Count  int64 `json:"count"`
}

// RequestPage is one page of the admin listing plus the unfiltered total.
type RequestPage struct {
	Requests []ToolRequest `json:"requests"`
	Count    int64         `json:"count"`
}

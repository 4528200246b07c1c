package models

import (
	"fmt"
	"strconv"
	"strings"
)

// RequestStatusID identifies a tool request lifecycle state. The set is closed.
type RequestStatusID int

const (
	// StatusPending indicates the request is awaiting review.
	StatusPending RequestStatusID = 0
	// StatusApproved indicates the request was accepted.
	StatusApproved RequestStatusID = 1
	// StatusRejected indicates the request was denied. Rejected requests free their code.
	StatusRejected RequestStatusID = 2
	// StatusDelivered indicates the tool was handed over.
	StatusDelivered RequestStatusID = 3
)

var statusLabels = map[RequestStatusID]string{
	StatusPending:   "PENDING",
	StatusApproved:  "APPROVED",
	StatusRejected:  "REJECTED",
	StatusDelivered: "DELIVERED",
}

// AllStatuses returns every status in id order.
func AllStatuses() []RequestStatusID {
	return []RequestStatusID{StatusPending, StatusApproved, StatusRejected, StatusDelivered}
}

// Valid reports whether s is a member of the status enumeration.
func (s RequestStatusID) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the catalog name of s, or "UNKNOWN(n)" for values outside the enumeration.
func (s RequestStatusID) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

func (s RequestStatusID) String() string {
	return s.Label()
}

// ParseRequestStatus accepts a numeric id ("1") or a name ("approved").
func ParseRequestStatus(raw string) (RequestStatusID, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		s := RequestStatusID(n)
		if !s.Valid() {
			return 0, fmt.Errorf("unknown status %d", n)
		}
		return s, nil
	}
	upper := strings.ToUpper(raw)
	for id, label := range statusLabels {
		if label == upper {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", raw)
}

var statusTransitions = map[RequestStatusID][]RequestStatusID{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusDelivered, StatusRejected},
	StatusRejected:  {StatusPending},
	StatusDelivered: {},
}

// CanTransitionTo reports whether the strict lifecycle graph allows moving from s to next.
// Writing the current status again is always allowed.
func (s RequestStatusID) CanTransitionTo(next RequestStatusID) bool {
	if s == next {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RequestStatus is a row of the immutable status catalog.
type RequestStatus struct {
	ID   RequestStatusID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string          `gorm:"size:20;not null;uniqueIndex" json:"name"`
}

// TableName pins the catalog table name.
func (RequestStatus) TableName() string {
	return "request_statuses"
}

// StatusCatalog returns the seed rows of the status catalog.
func StatusCatalog() []RequestStatus {
	out := make([]RequestStatus, 0, len(statusLabels))
	for _, id := range AllStatuses() {
		out = append(out, RequestStatus{ID: id, Name: id.Label()})
	}
	return out
}

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Decision is a user's verdict on a suggested brand.
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

// Validate checks that the decision is one of the known values.
func (d Decision) Validate() error {
	switch d {
	case DecisionAccept, DecisionDecline:
		return nil
	}
	return &ValidationError{Field: "decision", Reason: fmt.Sprintf("unknown decision %q", string(d))}
}

// SuggestionDecision records a user's decision on a brand. There is exactly
// one row per (user, brand) pair; a later decision supersedes an earlier one.
type SuggestionDecision struct {
	ID        int64     `json:"id"`
	UserRID   uuid.UUID `json:"user_rid"`
	BrandID   int64     `json:"brand_id"`
	Decision  Decision  `json:"decision"`
	DecidedAt time.Time `json:"decided_at"`
}

// DecisionRecord is one history entry: the decision joined with brand detail.
type DecisionRecord struct {
	Brand     *Brand    `json:"brand"`
	Decision  Decision  `json:"decision"`
	DecidedAt time.Time `json:"decided_at"`
}

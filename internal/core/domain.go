package core

import (
	"errors"
	"strings"
)

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

type (
	// Status is the payment state of a single monthly bill row.
	Status string

	// Bill is one row per occurrence-month. A recurring obligation is the
	// set of rows sharing a SeriesID (or, for rows imported from before
	// series ids existed, the same Name+Group).
	Bill struct {
		ID               string   `json:"id"`
		SeriesID         string   `json:"seriesId,omitempty"`
		Month            MonthRef `json:"month"`
		Name             string   `json:"name"`
		Amount           Money    `json:"amount"`
		Group            string   `json:"group"`
		Installment      bool     `json:"installment"`
		InstallmentIndex int      `json:"installmentIndex,omitempty"`
		InstallmentCount int      `json:"installmentCount,omitempty"`
		Fixed            bool     `json:"fixed"`
		Status           Status   `json:"status"`
		Notes            string   `json:"notes,omitempty"`
	}

	// DedupeKey identifies a bill row for duplicate checks during series
	// generation: at most one row may exist per (Name, Group, Month).
	DedupeKey struct {
		Name  string
		Group string
		Month MonthRef
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidMonth       = errors.New("invalid month reference")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidInstallment = errors.New("invalid installment numbering")
	ErrEmptyName          = errors.New("empty bill name")
	ErrEmptyGroup         = errors.New("empty group name")
)

func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusPaid:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// Toggle flips pending to paid and back.
func (s Status) Toggle() Status {
	if s == StatusPaid {
		return StatusPending
	}
	return StatusPaid
}

func (b Bill) Validate() error {
	if err := b.Month.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return errors.New("bill name too long (max 200 characters)")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.Group) == "" {
		return ErrEmptyGroup
	}
	if err := b.Status.Validate(); err != nil {
		return err
	}
	if b.Installment {
		if b.InstallmentIndex < 1 || b.InstallmentCount < 1 || b.InstallmentIndex > b.InstallmentCount {
			return ErrInvalidInstallment
		}
	} else if b.InstallmentIndex != 0 || b.InstallmentCount != 0 {
		return ErrInvalidInstallment
	}
	return nil
}

// Key returns the de-duplication key for series generation.
func (b Bill) Key() DedupeKey {
	return DedupeKey{Name: b.Name, Group: b.Group, Month: b.Month}
}

// SameSeries reports whether other belongs to the same series as b.
// Series ids are authoritative; rows without one fall back to the
// legacy Name+Group identity.
func (b Bill) SameSeries(other Bill) bool {
	if b.SeriesID != "" && other.SeriesID != "" {
		return b.SeriesID == other.SeriesID
	}
	return b.Name == other.Name && b.Group == other.Group
}

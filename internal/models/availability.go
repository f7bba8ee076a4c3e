// internal/models/availability.go
package models

import (
	"fmt"
	"strings"
)

// AvailabilityStatus is the closed set of per-slot contractor states.
type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "available"
	StatusBusy        AvailabilityStatus = "busy"
	StatusUnavailable AvailabilityStatus = "unavailable"
	StatusOnLeave     AvailabilityStatus = "on_leave"
)

var AllAvailabilityStatuses = []AvailabilityStatus{
	StatusAvailable,
	StatusBusy,
	StatusUnavailable,
	StatusOnLeave,
}

func (s AvailabilityStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusUnavailable, StatusOnLeave:
		return true
	}
	return false
}

func ParseAvailabilityStatus(s string) (AvailabilityStatus, error) {
	status := AvailabilityStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("unknown availability status %q", s)
	}
	return status, nil
}

// UnmarshalText accepts the empty string as "unset" so optional block fields
// decode cleanly.
func (s *AvailabilityStatus) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = ""
		return nil
	}
	parsed, err := ParseAvailabilityStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TimeBlock is one of the fixed day-parts used as scheduling granularity.
type TimeBlock string

const (
	TimeBlockAM      TimeBlock = "am"
	TimeBlockPM      TimeBlock = "pm"
	TimeBlockEvening TimeBlock = "evening"
)

var AllTimeBlocks = []TimeBlock{TimeBlockAM, TimeBlockPM, TimeBlockEvening}

func (b TimeBlock) IsValid() bool {
	switch b {
	case TimeBlockAM, TimeBlockPM, TimeBlockEvening:
		return true
	}
	return false
}

func ParseTimeBlock(s string) (TimeBlock, error) {
	block := TimeBlock(strings.ToLower(strings.TrimSpace(s)))
	if !block.IsValid() {
		return "", fmt.Errorf("unknown time block %q", s)
	}
	return block, nil
}

func (b *TimeBlock) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeBlock(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// BlockStatus holds one status per time block. An empty field means no
// explicit entry for that block.
type BlockStatus struct {
	AM      AvailabilityStatus `json:"am,omitempty" yaml:"am,omitempty"`
	PM      AvailabilityStatus `json:"pm,omitempty" yaml:"pm,omitempty"`
	Evening AvailabilityStatus `json:"evening,omitempty" yaml:"evening,omitempty"`
}

// For returns the explicit status for block, if one was recorded.
func (b BlockStatus) For(block TimeBlock) (AvailabilityStatus, bool) {
	var s AvailabilityStatus
	switch block {
	case TimeBlockAM:
		s = b.AM
	case TimeBlockPM:
		s = b.PM
	case TimeBlockEvening:
		s = b.Evening
	}
	return s, s != ""
}

// AvailabilityRecord is a contractor's availability for one calendar date. It
// carries either a whole-day Status (legacy model) or per-block Blocks; Blocks
// wins when both are set. Notes are informational only.
type AvailabilityRecord struct {
	ContractorID string             `json:"contractorId" yaml:"contractorId" validate:"required"`
	Date         string             `json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	Status       AvailabilityStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Blocks       *BlockStatus       `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	Notes        string             `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func (r AvailabilityRecord) IsPerBlock() bool {
	return r.Blocks != nil
}

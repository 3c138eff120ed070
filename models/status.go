package models

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// RecordStatus is the remote lifecycle status shared by all collections.
type RecordStatus string

const (
	StatusPublished RecordStatus = "published"
	StatusDraft     RecordStatus = "draft"
	StatusArchived  RecordStatus = "archived"
)

// BoxStatus is the physical state of a storage box.
type BoxStatus string

const (
	BoxStatusUnknown   BoxStatus = ""
	BoxStatusOpen      BoxStatus = "open"
	BoxStatusFull      BoxStatus = "full"
	BoxStatusInTransit BoxStatus = "in_transit"
	BoxStatusClosed    BoxStatus = "closed"
	BoxStatusSold      BoxStatus = "sold"
)

// BoxStatuses lists the selectable box states in display order.
var BoxStatuses = []BoxStatus{BoxStatusOpen, BoxStatusFull, BoxStatusInTransit, BoxStatusClosed, BoxStatusSold}

// ParseBoxStatus maps a raw value onto the closed enum. "available" is the
// older name for an open box.
func ParseBoxStatus(raw string) (BoxStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open", "available":
		return BoxStatusOpen, nil
	case "full":
		return BoxStatusFull, nil
	case "in_transit", "in transit", "in-transit":
		return BoxStatusInTransit, nil
	case "closed":
		return BoxStatusClosed, nil
	case "sold":
		return BoxStatusSold, nil
	}
	return BoxStatusUnknown, fmt.Errorf("unknown box status %q", raw)
}

// Label is the human-facing name.
func (s BoxStatus) Label() string {
	switch s {
	case BoxStatusOpen:
		return "Open"
	case BoxStatusFull:
		return "Full"
	case BoxStatusInTransit:
		return "In Transit"
	case BoxStatusClosed:
		return "Closed"
	case BoxStatusSold:
		return "Sold"
	}
	return "Unknown"
}

// UnmarshalJSON never fails on an unrecognised value; it decodes to BoxStatusUnknown.
func (s *BoxStatus) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = BoxStatusUnknown
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseBoxStatus(raw)
	if err != nil {
		*s = BoxStatusUnknown
		return nil
	}
	*s = parsed
	return nil
}

// Grade is the single-letter classification of a bale.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

var Grades = []Grade{GradeA, GradeB, GradeC, GradeD}

// ParseGrade accepts an optional grade; "" means unclassified.
func ParseGrade(raw string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(raw)))
	if g == "" {
		return "", nil
	}
	for _, known := range Grades {
		if g == known {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown classification %q", raw)
}

func (g Grade) Label() string {
	if g == "" {
		return "Unclassified"
	}
	return "Class " + string(g)
}

package enums

import "fmt"

// EquipmentStatus is the operational tag on an equipment record. It is
// descriptive only; reservation checks run off the quantity counters.
type EquipmentStatus string

const (
	EquipmentStatusAvailable   EquipmentStatus = "available"
	EquipmentStatusMaintenance EquipmentStatus = "maintenance"
	EquipmentStatusRetired     EquipmentStatus = "retired"
)

var validEquipmentStatuses = []EquipmentStatus{
	EquipmentStatusAvailable,
	EquipmentStatusMaintenance,
	EquipmentStatusRetired,
}

// String implements fmt.Stringer.
func (s EquipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known EquipmentStatus.
func (s EquipmentStatus) IsValid() bool {
	for _, candidate := range validEquipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEquipmentStatus converts raw input into an EquipmentStatus.
func ParseEquipmentStatus(value string) (EquipmentStatus, error) {
	for _, candidate := range validEquipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid equipment status %q", value)
}

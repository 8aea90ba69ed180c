package models

import "time"

// Device status values. Unenrollment is monotonic: a device cannot be
// re-enrolled through the safety path.
const (
	DeviceStatusActive     = "active"
	DeviceStatusOffline    = "offline"
	DeviceStatusUnenrolled = "unenrolled"
)

// Device is one enrolled device belonging to a family's child.
type Device struct {
	ID        string    `db:"id" json:"id"`
	FamilyID  string    `db:"family_id" json:"family_id"`
	ChildUID  string    `db:"child_uid" json:"child_uid"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

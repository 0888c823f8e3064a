package directory

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID          uuid.UUID
	FirstName   string
	LastName    string
	Email       *string
	Phone       *string
	DateOfBirth *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Staff is a hospital staff member. Staff with a clinical role act as
// providers that appointments are booked against.
type Staff struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Role      string
	Specialty *string
	Email     *string
	Phone     *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PatientPatch lists exactly the patient fields an update may touch.
type PatientPatch struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	DateOfBirth *time.Time
}

// StaffPatch lists exactly the staff fields an update may touch.
type StaffPatch struct {
	FirstName *string
	LastName  *string
	Role      *string
	Specialty *string
	Email     *string
	Phone     *string
	Active    *bool
}

package model

import "time"

// Guest is the identity record of an invited person as stored in the
// `guests` table.  The ID is a UUID string assigned at creation and never
// changes.  A guest owns at most one SeatAssignment.
//
// Fields:
//  ID           – primary key (UUID).
//  FirstName    – given name(s) as written on the guest list.
//  LastName     – family name as written on the guest list.
//  Email        – optional contact address.
//  Phone        – optional phone number.
//  CheckedIn    – whether the guest has been scanned in.
//  CheckedInAt  – when the guest was scanned in (nil until then).
//  CheckInToken – copy of the token of the current assignment, if any.
//  CreatedAt    – creation timestamp.
type Guest struct {
    ID           string     `json:"id"`                       // guests.id
    FirstName    string     `json:"first_name"`               // guests.first_name
    LastName     string     `json:"last_name"`                // guests.last_name
    Email        *string    `json:"email,omitempty"`          // guests.email (nullable)
    Phone        *string    `json:"phone,omitempty"`          // guests.phone (nullable)
    CheckedIn    bool       `json:"checked_in"`               // guests.checked_in
    CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`  // guests.checked_in_at (nullable)
    CheckInToken *string    `json:"check_in_token,omitempty"` // guests.qr_code (nullable)
    CreatedAt    time.Time  `json:"created_at"`               // guests.created_at
}

// FullName joins first and last name the way seating views display it.
func (g Guest) FullName() string {
    if g.FirstName == "" {
        return g.LastName
    }
    if g.LastName == "" {
        return g.FirstName
    }
    return g.FirstName + " " + g.LastName
}

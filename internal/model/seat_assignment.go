package model

import "time"

// SeatAssignment binds one guest to one seat at one table.  TableNumber is
// the guest-visible table number, not the table's storage id.  Rows are
// unique per guest and per (table number, seat number).
//
// Fields:
//  ID          – primary key.
//  GuestID     – guest holding the seat.
//  TableNumber – guest-visible number of the table.
//  SeatNumber  – 1-based seat number within the table.
//  Token       – check-in token derived from guest id and table number.
//  CheckedIn   – whether the guest was scanned in on this seat.
//  CreatedAt   – creation timestamp.
type SeatAssignment struct {
    ID          uint64    `json:"id"`           // seat_assignments.id
    GuestID     string    `json:"guest_id"`     // seat_assignments.guest_id
    TableNumber int       `json:"table_number"` // seat_assignments.table_number
    SeatNumber  int       `json:"seat_number"`  // seat_assignments.seat_number
    Token       string    `json:"token"`        // seat_assignments.qr_code
    CheckedIn   bool      `json:"checked_in"`   // seat_assignments.checked_in
    CreatedAt   time.Time `json:"created_at"`   // seat_assignments.created_at
}

package model

// Status is the derived state of a guest.  Precedence when computing it is
// checked_in > assigned > unassigned.
type Status string

const (
    StatusUnassigned Status = "unassigned"
    StatusAssigned   Status = "assigned"
    StatusCheckedIn  Status = "checked_in"
)

// SeatedGuest is one entry of a table's seating list.
type SeatedGuest struct {
    GuestID    string `json:"guest_id"`
    SeatNumber int    `json:"seat_number"`
    GuestName  string `json:"guest_name"`
    CheckedIn  bool   `json:"checked_in"`
}

// TableStatus is the table-centric occupancy read-model.  SeatedGuests is
// ordered by seat number and is never nil.
type TableStatus struct {
    TableNumber    int           `json:"table_number"`
    TableName      string        `json:"table_name"`
    Capacity       int           `json:"capacity"`
    IsVIP          bool          `json:"is_vip"`
    ColorCode      string        `json:"color_code"`
    ColorName      string        `json:"color_name"`
    OccupiedSeats  int           `json:"occupied_seats"`
    AvailableSeats int           `json:"available_seats"`
    SeatedGuests   []SeatedGuest `json:"seated_guests"`
}

// GuestStatus is the guest-centric read-model.  TableNumber and SeatNumber
// are nil for unassigned guests.
type GuestStatus struct {
    GuestID      string `json:"guest_id"`
    FirstName    string `json:"first_name"`
    LastName     string `json:"last_name"`
    TableNumber  *int   `json:"table_number"`
    TableName    string `json:"table_name,omitempty"`
    SeatNumber   *int   `json:"seat_number"`
    CheckInToken string `json:"check_in_token,omitempty"`
    Status       Status `json:"status"`
}

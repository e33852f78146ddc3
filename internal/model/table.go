package model

// Table is a seating unit.  Number is the guest-visible table number and the
// only identifier that other entities use to refer to a table; ID is the
// storage key and stays inside the repository layer.
//
// Fields:
//  ID        – internal primary key, never used in relationships.
//  Number    – unique, stable guest-visible table number.
//  Name      – display name (e.g. "Table des enfants").
//  Capacity  – maximum number of seated guests.
//  IsVIP     – VIP flag used by seating views.
//  ColorCode – colour tag (hex) used by printed material.
//  ColorName – human readable colour tag.
type Table struct {
    ID        uint64 `json:"-"`          // seating_tables.id
    Number    int    `json:"number"`     // seating_tables.table_number
    Name      string `json:"name"`       // seating_tables.table_name
    Capacity  int    `json:"capacity"`   // seating_tables.capacity
    IsVIP     bool   `json:"is_vip"`     // seating_tables.is_vip
    ColorCode string `json:"color_code"` // seating_tables.color_code
    ColorName string `json:"color_name"` // seating_tables.color_name
}

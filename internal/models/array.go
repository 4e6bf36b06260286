package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
)

// StringArray maps a PostgreSQL text[] column onto a Go string slice.
type StringArray []string

// Scan implements sql.Scanner.
func (a *StringArray) Scan(src interface{}) error {
	return pq.Array((*[]string)(a)).Scan(src)
}

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	return pq.Array([]string(a)).Value()
}

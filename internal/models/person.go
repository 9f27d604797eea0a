package models

import "time"

// PersonStatus is the employment state of a person.
type PersonStatus string

const (
	PersonStatusActive   PersonStatus = "active"
	PersonStatusInactive PersonStatus = "inactive"
)

// Person is a staffable individual. The engine only needs the ID; the other
// fields feed PlanningFilter.
type Person struct {
	ID           string       `db:"id" json:"id" yaml:"id"`
	Name         string       `db:"name" json:"name" yaml:"name"`
	Profile      string       `db:"profile" json:"profile" yaml:"profile"`
	Status       PersonStatus `db:"status" json:"status" yaml:"status"`
	ContractType string       `db:"contract_type" json:"contract_type" yaml:"contract_type"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at" yaml:"created_at"`
}

package models

// Project is the work an assignment belongs to.
type Project struct {
	ID         string `db:"id" json:"id" yaml:"id"`
	Name       string `db:"name" json:"name" yaml:"name"`
	ClientName string `db:"client_name" json:"client_name" yaml:"client_name"`
	Status     string `db:"status" json:"status" yaml:"status"`
}

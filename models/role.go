package models

type Role string

const (
	RoleDonor Role = "donor"
	RoleAdmin Role = "admin"
)

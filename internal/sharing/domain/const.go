package domain

// Role identifies the kind of caller established by the upstream session layer.
type Role string

const (
	// RolePatient is a report owner.
	RolePatient Role = "patient"

	// RoleDoctor is a clinician; the only role that can hold delegated access.
	RoleDoctor Role = "doctor"

	// RoleAdmin is an administrator; may deactivate any token but gains no
	// report access through grants.
	RoleAdmin Role = "admin"
)

// SecretLength is the length of generated share token secrets.
const SecretLength = 43

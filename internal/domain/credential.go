package domain

import "time"

// Credential is the set of tokens a department holds after logging in.
// A credential is usable only when all three fields are present.
type Credential struct {
	AccessToken  string
	RefreshToken string
	DepartmentID string
}

// Complete reports whether every field of the credential is set.
func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != "" && c.DepartmentID != ""
}

// VerificationStatus is a cached answer to "is this department verified".
type VerificationStatus struct {
	IsVerified bool
	CheckedAt  time.Time
}

// VerificationState is the outcome of a verification check. Unknown is
// distinct from Unverified and is never treated as either answer.
type VerificationState int

const (
	VerificationUnknown VerificationState = iota
	VerificationVerified
	VerificationUnverified
)

// VerificationStateOf converts a definite answer into a VerificationState.
func VerificationStateOf(isVerified bool) VerificationState {
	if isVerified {
		return VerificationVerified
	}
	return VerificationUnverified
}

func (s VerificationState) String() string {
	switch s {
	case VerificationVerified:
		return "verified"
	case VerificationUnverified:
		return "unverified"
	default:
		return "unknown"
	}
}

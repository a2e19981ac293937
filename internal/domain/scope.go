package domain

// Scope identifies whose data an operation touches. A nil OwnerID is the
// shared anonymous scope and is only valid in legacy mode.
type Scope struct {
	OwnerID *int64
	Legacy  bool
}

// UserScope returns the scope of an authenticated user.
func UserScope(ownerID int64) Scope {
	return Scope{OwnerID: &ownerID}
}

// NewScope builds a scope from an optional owner.
func NewScope(ownerID *int64, legacy bool) Scope {
	return Scope{OwnerID: ownerID, Legacy: legacy}
}

// IsShared reports whether the scope is the legacy anonymous one.
func (s Scope) IsShared() bool {
	return s.OwnerID == nil
}

// Validate rejects an anonymous scope when legacy mode is off.
func (s Scope) Validate() error {
	if s.OwnerID == nil && !s.Legacy {
		return Validation("owner required")
	}
	return nil
}

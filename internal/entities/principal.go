package entities

// Principal is the authenticated caller extracted from the bearer token.
// Issuing the token is the auth service's job, not ours.
type Principal struct {
	ID    string
	Email string
	Name  string
	Admin bool
}

// CanAccess reports whether the principal may read the given order.
func (p Principal) CanAccess(o Order) bool {
	return p.Admin || p.ID == o.CustomerID
}

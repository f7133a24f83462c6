package domain

// ID is used across domain entities.
type ID = int64

// Role is the privilege level carried in an auth token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Requester carries the authenticated caller of an operation.
type Requester struct {
	UserID ID   `json:"userId"`
	Role   Role `json:"role"`
}

func (r Requester) IsAdmin() bool { return r.Role == RoleAdmin }

// Authorize is the single ownership policy: the owner of a resource or any
// admin may act on it.
func Authorize(r Requester, ownerID ID) error {
	if r.UserID <= 0 && !r.IsAdmin() {
		return UnauthorizedError{Msg: "No token, authorization denied"}
	}
	if r.IsAdmin() || r.UserID == ownerID {
		return nil
	}
	return UnauthorizedError{}
}

// RequireAdmin denies every non-admin requester.
func RequireAdmin(r Requester) error {
	if r.IsAdmin() {
		return nil
	}
	return UnauthorizedError{Msg: "Admin access required"}
}

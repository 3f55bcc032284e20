package domain

// Role is the staff role attached to an authenticated actor. The MOM role is
// the finance controller; the code survives from the legacy schema.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleFinance  Role = "MOM"
	RoleOperator Role = "OPERATOR"
	RoleCustomer Role = "CUSTOMER"
)

// Actor identifies who is performing an operation.
type Actor struct {
	ID   int64
	Role Role
}

// CanManageFinances reports whether the actor may capture, confirm receipts
// and process refunds.
func (a Actor) CanManageFinances() bool {
	return a.Role == RoleAdmin || a.Role == RoleFinance
}

// CanOperate reports whether the actor may claim orders and send links.
func (a Actor) CanOperate() bool {
	return a.Role == RoleAdmin || a.Role == RoleOperator
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

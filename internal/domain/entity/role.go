package entity

// Staff roles carried in access token claims. Role assignment lives in the
// identity service; the core only checks them.
const (
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
	RoleCashier      = "cashier"
	RoleDoctor       = "doctor"
)

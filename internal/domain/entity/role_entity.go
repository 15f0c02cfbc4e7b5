package entity

// Role is carried on accounts and tokens; no authorization is derived from it here.
type Role string

const (
	RoleCliente     Role = "cliente"
	RoleColaborador Role = "colaborador"
)

// Roles lists the roles accepted at registration.
var Roles = []Role{RoleCliente, RoleColaborador}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

package domain

// Role: закрытый перечень ролей. Пустая роль означает анонимного актора.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleUser       Role = "user"
	RoleCustom     Role = "custom"
	RoleAnonymous  Role = ""
)

// Valid сообщает, входит ли роль в перечень.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEditor, RoleUser, RoleCustom:
		return true
	}
	return false
}

// ActorContext: кто выполняет операцию. Живет ровно один логический запрос,
// ядро его не хранит и не кэширует.
type ActorContext struct {
	ID          int64    `json:"id"`
	DisplayName string   `json:"username"`
	Role        Role     `json:"role"`
	Privileges  []string `json:"privileges,omitempty"`
}

// Anonymous: контекст без сессии.
func Anonymous() ActorContext { return ActorContext{} }

func (a ActorContext) IsAnonymous() bool { return a.ID == 0 }

// IsPrivileged: любой админский доступ (role != user). Аноним никогда не привилегирован,
// даже несмотря на то что его пустая роль формально != "user".
func (a ActorContext) IsPrivileged() bool {
	if a.IsAnonymous() || !a.Role.Valid() {
		return false
	}
	return a.Role != RoleUser
}

// IsTopPrivileged: только super_admin (массовая очистка журнала и т.п.).
func (a ActorContext) IsTopPrivileged() bool {
	return !a.IsAnonymous() && a.Role == RoleSuperAdmin
}

// HasPrivilege проверяет явное право custom-роли.
func (a ActorContext) HasPrivilege(p string) bool {
	for _, v := range a.Privileges {
		if v == p {
			return true
		}
	}
	return false
}

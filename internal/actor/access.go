package actor

import (
	"strings"

	"github.com/xela07ax/storefront-console/internal/domain"
)

// Section: раздел админки.
type Section string

const (
	SectionNotifications Section = "notifications"
	SectionProducts      Section = "products"
	SectionCategories    Section = "categories"
	SectionUsers         Section = "users"
	SectionOrders        Section = "orders"
	SectionContacts      Section = "contacts"
	SectionUISettings    Section = "ui-settings"
	SectionAccounts      Section = "accounts"
)

// Path: адрес раздела в админке; custom-права хранятся в этой же форме.
func (s Section) Path() string { return "/admin/manage-" + string(s) }

var roleSections = map[domain.Role][]Section{
	domain.RoleSuperAdmin: {
		SectionNotifications, SectionProducts, SectionCategories, SectionUsers,
		SectionOrders, SectionContacts, SectionUISettings, SectionAccounts,
	},
	domain.RoleAdmin: {
		SectionNotifications, SectionProducts, SectionCategories, SectionUsers,
		SectionOrders, SectionContacts, SectionUISettings,
	},
	domain.RoleEditor: {SectionProducts, SectionCategories},
}

// CanAccess: предопределенные роли проверяются по своему списку разделов, custom по privileges.
// user и аноним доступа к админке не имеют.
func CanAccess(a domain.ActorContext, section Section) bool {
	if !a.IsPrivileged() {
		return false
	}
	if a.Role == domain.RoleCustom {
		for _, p := range a.Privileges {
			if Section(strings.TrimPrefix(p, "/admin/manage-")) == section {
				return true
			}
		}
		return false
	}
	for _, s := range roleSections[a.Role] {
		if s == section {
			return true
		}
	}
	return false
}

// Sections: разделы, доступные актору (для меню админки).
func Sections(a domain.ActorContext) []Section {
	if !a.IsPrivileged() {
		return nil
	}
	if a.Role != domain.RoleCustom {
		return append([]Section(nil), roleSections[a.Role]...)
	}
	var out []Section
	for _, s := range roleSections[domain.RoleSuperAdmin] {
		if CanAccess(a, s) {
			out = append(out, s)
		}
	}
	return out
}

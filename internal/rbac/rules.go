package rbac

// Roles is the closed set of account roles. Dispatch happens against this
// table, not ad-hoc string comparison.
var Roles = []string{
	"superadmin",
	"admin",
	"registrar",
	"finance",
	"teacher",
	"student",
	"parent",
}

func KnownRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

var RolePermissions = map[string][]string{
	"superadmin": {
		"*", // everything
	},
	"admin": {
		"registry:*",
		"cashier:view",
		"gradebook:view",
		"settings:edit",
		"users:manage",
	},
	"registrar": {
		"registry:students",
		"registry:sections",
		"registry:schedules",
		"registry:view",
	},
	"finance": {
		"cashier:checkout",
		"cashier:view",
		"registry:fees",
		"registry:discounts",
		"registry:inventory",
		"registry:view",
	},
	"teacher": {
		"gradebook:rubric",
		"gradebook:activities",
		"gradebook:scores",
		"gradebook:conduct",
		"gradebook:view",
		"registry:view",
	},
	"student": {
		"gradebook:view-own",
		"cashier:view-own",
	},
	"parent": {
		"gradebook:view-own",
		"cashier:view-own",
	},
}

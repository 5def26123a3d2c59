package normalization

import "strings"

// entityAliases maps the spellings used by portal routes, kafka events and
// CLI arguments onto the canonical catalog entity names.
var entityAliases = map[string]string{
	"":        "",
	"-":       "",
	"default": "",

	// Roles
	"role":               "roles",
	"roles":              "roles",
	"role-permission":    "role-permissions",
	"role-permissions":   "role-permissions",
	"rolepermission":     "role-permissions",
	"rolepermissions":    "role-permissions",
	"role-user":          "role-users",
	"role-users":         "role-users",
	"roleuser":           "role-users",
	"roleusers":          "role-users",
	"role-row-filter":    "role-row-filters",
	"role-row-filters":   "role-row-filters",
	"rolerowfilter":      "role-row-filters",
	"rolerowfilters":     "role-row-filters",
	"role-col-filter":    "role-col-filters",
	"role-col-filters":   "role-col-filters",
	"rolecolfilter":      "role-col-filters",
	"rolecolfilters":     "role-col-filters",
	"role-column-filter": "role-col-filters",

	// Groups
	"group":             "groups",
	"groups":            "groups",
	"group-permission":  "group-permissions",
	"group-permissions": "group-permissions",
	"grouppermission":   "group-permissions",
	"grouppermissions":  "group-permissions",
	"group-user":        "group-users",
	"group-users":       "group-users",
	"groupuser":         "group-users",
	"groupusers":        "group-users",

	// Positions
	"position":             "positions",
	"positions":            "positions",
	"position-permission":  "position-permissions",
	"position-permissions": "position-permissions",
	"positionpermission":   "position-permissions",
	"positionpermissions":  "position-permissions",
	"position-user":        "position-users",
	"position-users":       "position-users",
	"positionuser":         "position-users",
	"positionusers":        "position-users",

	// Attributes
	"attribute":             "attributes",
	"attributes":            "attributes",
	"attribute-permission":  "attribute-permissions",
	"attribute-permissions": "attribute-permissions",
	"attributepermission":   "attribute-permissions",
	"attributepermissions":  "attribute-permissions",
	"attribute-user":        "attribute-users",
	"attribute-users":       "attribute-users",
	"attributeuser":         "attribute-users",
	"attributeusers":        "attribute-users",

	// Configuration
	"config":                 "configs",
	"configs":                "configs",
	"config-property":        "config-properties",
	"config-properties":      "config-properties",
	"configproperty":         "config-properties",
	"configproperties":       "config-properties",
	"config-environment":     "config-environments",
	"config-environments":    "config-environments",
	"configenvironment":      "config-environments",
	"environment-property":   "config-environments",
	"environment-properties": "config-environments",
	"config-product":         "config-products",
	"config-products":        "config-products",
	"configproduct":          "config-products",
	"product-property":       "config-products",
	"product-properties":     "config-products",
	"config-instance":        "config-instances",
	"config-instances":       "config-instances",
	"configinstance":         "config-instances",
	"instance-property":      "config-instances",
	"instance-properties":    "config-instances",

	// Users
	"user":  "users",
	"users": "users",
}

// NormalizeEntity converts various entity name formats to their canonical form.
// This function handles singular/plural forms, different separators (-, _, space),
// and common aliases.
//
// Example:
//
//	NormalizeEntity("rolePermission") => "role-permissions"
//	NormalizeEntity("CONFIG_INSTANCE") => "config-instances"
//	NormalizeEntity("user") => "users"
func NormalizeEntity(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	normalized := strings.NewReplacer("_", "-", " ", "-").Replace(trimmed)

	if canonical, found := entityAliases[normalized]; found {
		return canonical
	}
	if canonical, found := entityAliases[strings.ReplaceAll(normalized, "-", "")]; found {
		return canonical
	}
	return normalized
}

package usecase

import (
	"errors"
	"fmt"

	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/shared/normalization"
)

var ErrUnknownEntity = errors.New("unknown entity")

// Entry describes one catalog entity and opens views over it.
type Entry struct {
	Entity       string   `json:"entity"`
	Service      string   `json:"service"`
	QueryAction  string   `json:"queryAction"`
	FreshAction  string   `json:"freshAction"`
	CreateAction string   `json:"createAction"`
	UpdateAction string   `json:"updateAction"`
	DeleteAction string   `json:"deleteAction"`
	ResultKey    string   `json:"resultKey"`
	EditPath     string   `json:"editPath"`
	KeyFields    []string `json:"keyFields"`
	SeedFields   []string `json:"seedFields,omitempty"`
	SeedActive   bool     `json:"seedActive"`

	open func(session domain.Session, portal port.Portal, opts ControllerOptions) View
}

// Open builds an unmounted view for the entry.
func (e Entry) Open(session domain.Session, portal port.Portal, opts ControllerOptions) View {
	return e.open(session, portal, opts)
}

func entry[T any](def Definition[T], keyFields ...string) Entry {
	return Entry{
		Entity:       def.Entity,
		Service:      def.Service,
		QueryAction:  def.QueryAction,
		FreshAction:  def.FreshAction,
		CreateAction: def.CreateAction,
		UpdateAction: def.UpdateAction,
		DeleteAction: def.DeleteAction,
		ResultKey:    def.ResultKey,
		EditPath:     def.EditPath,
		KeyFields:    keyFields,
		SeedFields:   def.SeedFields,
		SeedActive:   def.SeedActive,
		open: func(session domain.Session, portal port.Portal, opts ControllerOptions) View {
			return NewController(def, session, portal, opts)
		},
	}
}

// Catalog is the ordered set of entities a console can open.
type Catalog struct {
	entries map[string]Entry
	order   []string
}

func NewCatalog(entries ...Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if _, dup := c.entries[e.Entity]; dup {
			continue
		}
		c.entries[e.Entity] = e
		c.order = append(c.order, e.Entity)
	}
	return c
}

// Lookup resolves any accepted spelling of an entity name.
func (c *Catalog) Lookup(entity string) (Entry, error) {
	name := normalization.NormalizeEntity(entity)
	e, ok := c.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	return e, nil
}

// Entries returns the catalog in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entries[name])
	}
	return out
}

// DefaultCatalog lists every portal admin entity.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		entry(Roles, "roleId"),
		entry(RolePermissions, "roleId", "endpointId"),
		entry(RoleUsers, "roleId", "userId"),
		entry(RoleRowFilters, "roleId", "endpointId", "colName"),
		entry(RoleColFilters, "roleId", "endpointId"),
		entry(Groups, "groupId"),
		entry(GroupPermissions, "groupId", "endpointId"),
		entry(GroupUsers, "groupId", "userId"),
		entry(Positions, "positionId"),
		entry(PositionPermissions, "positionId", "endpointId"),
		entry(PositionUsers, "positionId", "employeeId"),
		entry(Attributes, "attributeId"),
		entry(AttributePermissions, "attributeId", "endpointId"),
		entry(AttributeUsers, "attributeId", "userId"),
		entry(Configs, "configId"),
		entry(ConfigProperties, "configId", "propertyId"),
		entry(ConfigEnvironments, "environment", "propertyId"),
		entry(ConfigProducts, "productId", "propertyId"),
		entry(ConfigInstances, "instanceId", "propertyId"),
		entry(Users, "userId"),
	)
}

// define fills the action names the portal derives from one entity name.
func define[T any](entity, service, queryAction, name, resultKey string, key func(T) string) Definition[T] {
	return Definition[T]{
		Entity:       entity,
		Service:      service,
		QueryAction:  queryAction,
		FreshAction:  "getFresh" + name,
		CreateAction: "create" + name,
		UpdateAction: "update" + name,
		DeleteAction: "delete" + name,
		ResultKey:    resultKey,
		EditPath:     "/app/form/update" + name,
		Key:          key,
	}
}

// seeded marks a child list entered from a parent row.
func seeded[T any](def Definition[T], fields ...string) Definition[T] {
	def.SeedFields = fields
	def.SeedActive = true
	return def
}

var (
	Roles = define("roles", "role", "getRole", "Role", "roles",
		func(r domain.Role) string { return r.RoleID })
	RolePermissions = seeded(define("role-permissions", "role", "queryRolePermission", "RolePermission", "rolePermissions",
		func(r domain.RolePermission) string { return compositeKey(r.RoleID, r.EndpointID) }), "roleId")
	RoleUsers = seeded(define("role-users", "role", "queryRoleUser", "RoleUser", "roleUsers",
		func(r domain.RoleUser) string { return compositeKey(r.RoleID, r.UserID) }), "roleId")
	RoleRowFilters = seeded(define("role-row-filters", "role", "queryRoleRowFilter", "RoleRowFilter", "roleRowFilters",
		func(r domain.RoleRowFilter) string { return compositeKey(r.RoleID, r.EndpointID, r.ColName) }), "roleId")
	RoleColFilters = seeded(define("role-col-filters", "role", "queryRoleColFilter", "RoleColFilter", "roleColFilters",
		func(r domain.RoleColFilter) string { return compositeKey(r.RoleID, r.EndpointID) }), "roleId")

	Groups = define("groups", "group", "getGroup", "Group", "groups",
		func(g domain.Group) string { return g.GroupID })
	GroupPermissions = seeded(define("group-permissions", "group", "queryGroupPermission", "GroupPermission", "groupPermissions",
		func(g domain.GroupPermission) string { return compositeKey(g.GroupID, g.EndpointID) }), "groupId")
	GroupUsers = seeded(define("group-users", "group", "queryGroupUser", "GroupUser", "groupUsers",
		func(g domain.GroupUser) string { return compositeKey(g.GroupID, g.UserID) }), "groupId")

	Positions = define("positions", "position", "getPosition", "Position", "positions",
		func(p domain.Position) string { return p.PositionID })
	PositionPermissions = seeded(define("position-permissions", "position", "queryPositionPermission", "PositionPermission", "positionPermissions",
		func(p domain.PositionPermission) string { return compositeKey(p.PositionID, p.EndpointID) }), "positionId")
	PositionUsers = seeded(define("position-users", "position", "queryPositionUser", "PositionUser", "positionUsers",
		func(p domain.PositionUser) string { return compositeKey(p.PositionID, p.EmployeeID) }), "positionId")

	Attributes = define("attributes", "attribute", "getAttribute", "Attribute", "attributes",
		func(a domain.Attribute) string { return a.AttributeID })
	AttributePermissions = seeded(define("attribute-permissions", "attribute", "queryAttributePermission", "AttributePermission", "attributePermissions",
		func(a domain.AttributePermission) string { return compositeKey(a.AttributeID, a.EndpointID) }), "attributeId")
	AttributeUsers = seeded(define("attribute-users", "attribute", "queryAttributeUser", "AttributeUser", "attributeUsers",
		func(a domain.AttributeUser) string { return compositeKey(a.AttributeID, a.UserID) }), "attributeId")

	Configs = define("configs", "config", "getConfig", "Config", "configs",
		func(c domain.Config) string { return c.ConfigID })
	ConfigProperties = seeded(define("config-properties", "config", "getConfigProperty", "ConfigProperty", "configProperties",
		func(c domain.ConfigProperty) string { return compositeKey(c.ConfigID, c.PropertyID) }), "configId")
	ConfigEnvironments = seeded(define("config-environments", "config", "getConfigEnvironment", "ConfigEnvironment", "environmentProperties",
		func(c domain.ConfigEnvironment) string { return compositeKey(c.Environment, c.PropertyID) }), "configId", "propertyId", "environment")
	ConfigProducts = seeded(define("config-products", "config", "getConfigProduct", "ConfigProduct", "productProperties",
		func(c domain.ConfigProduct) string { return compositeKey(c.ProductID, c.PropertyID) }), "configId", "propertyId", "productId")
	ConfigInstances = seeded(define("config-instances", "config", "getConfigInstance", "ConfigInstance", "instanceProperties",
		func(c domain.ConfigInstance) string { return compositeKey(c.InstanceID, c.PropertyID) }), "configId", "propertyId", "instanceId")

	Users = define("users", "user", "listUserByHostId", "User", "users",
		func(u domain.User) string { return u.UserID })
)

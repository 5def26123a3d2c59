package domain

// Audit holds the bookkeeping fields every portal record carries.
// AggregateVersion is the optimistic concurrency token; it is only ever
// forwarded as last observed, never computed.
type Audit struct {
	UpdateUser       string `json:"updateUser,omitempty"`
	UpdateTs         string `json:"updateTs,omitempty"`
	AggregateVersion int64  `json:"aggregateVersion"`
	Active           *bool  `json:"active,omitempty"`
}

type Role struct {
	HostID   string `json:"hostId"`
	RoleID   string `json:"roleId"`
	RoleDesc string `json:"roleDesc,omitempty"`
	Audit
}

type RolePermission struct {
	HostID       string `json:"hostId"`
	RoleID       string `json:"roleId"`
	APIVersionID string `json:"apiVersionId,omitempty"`
	APIID        string `json:"apiId,omitempty"`
	APIVersion   string `json:"apiVersion,omitempty"`
	EndpointID   string `json:"endpointId"`
	Endpoint     string `json:"endpoint,omitempty"`
	Audit
}

type RoleUser struct {
	HostID    string `json:"hostId"`
	RoleID    string `json:"roleId"`
	UserID    string `json:"userId"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	UserType  string `json:"userType,omitempty"`
	EntityID  string `json:"entityId,omitempty"`
	StartTs   string `json:"startTs,omitempty"`
	EndTs     string `json:"endTs,omitempty"`
	Audit
}

type RoleRowFilter struct {
	HostID       string `json:"hostId"`
	RoleID       string `json:"roleId"`
	APIVersionID string `json:"apiVersionId,omitempty"`
	APIID        string `json:"apiId,omitempty"`
	APIVersion   string `json:"apiVersion,omitempty"`
	EndpointID   string `json:"endpointId"`
	Endpoint     string `json:"endpoint,omitempty"`
	ColName      string `json:"colName"`
	Operator     string `json:"operator,omitempty"`
	ColValue     string `json:"colValue,omitempty"`
	Audit
}

type RoleColFilter struct {
	HostID       string `json:"hostId"`
	RoleID       string `json:"roleId"`
	APIVersionID string `json:"apiVersionId,omitempty"`
	APIID        string `json:"apiId,omitempty"`
	APIVersion   string `json:"apiVersion,omitempty"`
	EndpointID   string `json:"endpointId"`
	Endpoint     string `json:"endpoint,omitempty"`
	Columns      string `json:"columns,omitempty"`
	Audit
}

type Group struct {
	HostID    string `json:"hostId"`
	GroupID   string `json:"groupId"`
	GroupDesc string `json:"groupDesc,omitempty"`
	Audit
}

type GroupPermission struct {
	HostID       string `json:"hostId"`
	GroupID      string `json:"groupId"`
	APIVersionID string `json:"apiVersionId,omitempty"`
	APIID        string `json:"apiId,omitempty"`
	APIVersion   string `json:"apiVersion,omitempty"`
	EndpointID   string `json:"endpointId"`
	Endpoint     string `json:"endpoint,omitempty"`
	Audit
}

type GroupUser struct {
	HostID    string `json:"hostId"`
	GroupID   string `json:"groupId"`
	UserID    string `json:"userId"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	UserType  string `json:"userType,omitempty"`
	EntityID  string `json:"entityId,omitempty"`
	StartTs   string `json:"startTs,omitempty"`
	EndTs     string `json:"endTs,omitempty"`
	Audit
}

type Position struct {
	HostID            string `json:"hostId"`
	PositionID        string `json:"positionId"`
	PositionDesc      string `json:"positionDesc,omitempty"`
	InheritToAncestor string `json:"inheritToAncestor,omitempty"`
	InheritToSibling  string `json:"inheritToSibling,omitempty"`
	Audit
}

type PositionPermission struct {
	HostID       string `json:"hostId"`
	PositionID   string `json:"positionId"`
	APIVersionID string `json:"apiVersionId,omitempty"`
	APIID        string `json:"apiId,omitempty"`
	APIVersion   string `json:"apiVersion,omitempty"`
	EndpointID   string `json:"endpointId"`
	Endpoint     string `json:"endpoint,omitempty"`
	Audit
}

type PositionUser struct {
	HostID       string `json:"hostId"`
	PositionID   string `json:"positionId"`
	EmployeeID   string `json:"employeeId"`
	UserID       string `json:"userId,omitempty"`
	Email        string `json:"email,omitempty"`
	PositionType string `json:"positionType,omitempty"`
	StartTs      string `json:"startTs,omitempty"`
	EndTs        string `json:"endTs,omitempty"`
	Audit
}

type Attribute struct {
	HostID        string `json:"hostId"`
	AttributeID   string `json:"attributeId"`
	AttributeType string `json:"attributeType,omitempty"`
	AttributeDesc string `json:"attributeDesc,omitempty"`
	Audit
}

type AttributePermission struct {
	HostID         string `json:"hostId"`
	AttributeID    string `json:"attributeId"`
	AttributeType  string `json:"attributeType,omitempty"`
	AttributeValue string `json:"attributeValue,omitempty"`
	APIVersionID   string `json:"apiVersionId,omitempty"`
	APIID          string `json:"apiId,omitempty"`
	APIVersion     string `json:"apiVersion,omitempty"`
	EndpointID     string `json:"endpointId"`
	Endpoint       string `json:"endpoint,omitempty"`
	Audit
}

type AttributeUser struct {
	HostID         string `json:"hostId"`
	AttributeID    string `json:"attributeId"`
	AttributeType  string `json:"attributeType,omitempty"`
	AttributeValue string `json:"attributeValue,omitempty"`
	UserID         string `json:"userId"`
	Email          string `json:"email,omitempty"`
	UserType       string `json:"userType,omitempty"`
	EntityID       string `json:"entityId,omitempty"`
	StartTs        string `json:"startTs,omitempty"`
	EndTs          string `json:"endTs,omitempty"`
	Audit
}

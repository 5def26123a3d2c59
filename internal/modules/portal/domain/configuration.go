package domain

type Config struct {
	ConfigID       string `json:"configId"`
	ConfigName     string `json:"configName"`
	ConfigPhase    string `json:"configPhase,omitempty"`
	ConfigType     string `json:"configType,omitempty"`
	Light4jVersion string `json:"light4jVersion,omitempty"`
	ClassPath      string `json:"classPath,omitempty"`
	ConfigDesc     string `json:"configDesc,omitempty"`
	Audit
}

type ConfigProperty struct {
	ConfigID      string `json:"configId"`
	ConfigName    string `json:"configName,omitempty"`
	PropertyID    string `json:"propertyId"`
	PropertyName  string `json:"propertyName"`
	PropertyType  string `json:"propertyType,omitempty"`
	PropertyValue string `json:"propertyValue,omitempty"`
	ResourceType  string `json:"resourceType,omitempty"`
	ValueType     string `json:"valueType,omitempty"`
	Required      bool   `json:"required"`
	DisplayOrder  int    `json:"displayOrder,omitempty"`
	PropertyDesc  string `json:"propertyDesc,omitempty"`
	Audit
}

// ConfigEnvironment overrides a property for one environment of a host.
type ConfigEnvironment struct {
	HostID        string `json:"hostId"`
	Environment   string `json:"environment"`
	ConfigID      string `json:"configId,omitempty"`
	ConfigName    string `json:"configName,omitempty"`
	PropertyID    string `json:"propertyId"`
	PropertyName  string `json:"propertyName,omitempty"`
	PropertyValue string `json:"propertyValue,omitempty"`
	Audit
}

// ConfigProduct overrides a property for one product version.
type ConfigProduct struct {
	ProductID     string `json:"productId"`
	ConfigID      string `json:"configId,omitempty"`
	ConfigName    string `json:"configName,omitempty"`
	PropertyID    string `json:"propertyId"`
	PropertyName  string `json:"propertyName,omitempty"`
	PropertyValue string `json:"propertyValue,omitempty"`
	Audit
}

// ConfigInstance overrides a property for one deployed instance.
type ConfigInstance struct {
	HostID        string `json:"hostId"`
	InstanceID    string `json:"instanceId"`
	InstanceName  string `json:"instanceName,omitempty"`
	ConfigID      string `json:"configId,omitempty"`
	ConfigName    string `json:"configName,omitempty"`
	PropertyID    string `json:"propertyId"`
	PropertyName  string `json:"propertyName,omitempty"`
	PropertyValue string `json:"propertyValue,omitempty"`
	Audit
}

type User struct {
	HostID    string `json:"hostId"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	UserType  string `json:"userType,omitempty"`
	EntityID  string `json:"entityId,omitempty"`
	Language  string `json:"language,omitempty"`
	Verified  bool   `json:"verified"`
	Locked    bool   `json:"locked"`
	Audit
}

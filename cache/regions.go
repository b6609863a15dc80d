package cache

// DefaultRegion is used when a caller passes an empty region name.
const DefaultRegion = "default"

// Regions used by Data objects for their per-instance state.
const (
	RegionProperties      = "Properties"
	RegionProxies         = "Proxies"
	RegionContractObjects = "ContractObjects"
)

// Regions used by the type registry.
const (
	RegionKnownTypes           = "KnownTypes"
	RegionDataTypeInfos        = "DataTypeInfos"
	RegionContractTypeInfos    = "ContractTypeInfos"
	RegionDynamicChildrenTypes = "DynamicChildrenTypes"
)

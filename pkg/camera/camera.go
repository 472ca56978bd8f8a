package camera

// Component - camera capability used by the protocol server. Hardware and
// simulated cameras implement it. The server never owns or closes components.
type Component interface {
	Info() Info

	GetParam(name string) ([]byte, bool)
	SetParam(name string, value []byte, typ ParamType) bool
	ListParams() map[string][]byte
	ParamType(name string) ParamType
}

// StorageReporter - optional interface for components with own storage
type StorageReporter interface {
	Storage() Storage
}

type Info struct {
	Vendor          string  `json:"vendor"`
	Model           string  `json:"model"`
	FirmwareVersion uint32  `json:"firmware_version,omitempty"`
	FocalLength     float32 `json:"focal_length,omitempty"` // mm
	SensorSizeH     float32 `json:"sensor_size_h,omitempty"`
	SensorSizeV     float32 `json:"sensor_size_v,omitempty"`
	ResolutionH     uint16  `json:"resolution_h,omitempty"`
	ResolutionV     uint16  `json:"resolution_v,omitempty"`
	LensID          uint8   `json:"lens_id,omitempty"`
	Flags           uint32  `json:"flags,omitempty"`

	DefinitionVersion uint16 `json:"definition_version,omitempty"`
	DefinitionURI     string `json:"definition_uri,omitempty"`
}

// Storage status values
const (
	StorageNotAvailable = 0
	StorageUnformatted  = 1
	StorageReady        = 2
)

type Storage struct {
	ID         uint8
	Count      uint8
	Status     uint8
	Total      float32 // MiB
	Used       float32
	Available  float32
	ReadSpeed  float32 // MiB/s
	WriteSpeed float32
}

// DefaultStorage - figures reported for components without own storage
var DefaultStorage = Storage{
	ID:         1,
	Count:      1,
	Status:     StorageReady,
	Total:      50,
	Available:  50,
	ReadSpeed:  128,
	WriteSpeed: 128,
}

// Camera modes for camera-mode param
const (
	ModeStill   = 0
	ModeVideo   = 1
	ModePreview = 2
)

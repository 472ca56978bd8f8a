package mavlink

import (
	"encoding/binary"
	"math"
)

// Unmarshal decodes frame payload into one of the supported messages
func Unmarshal(f *Frame) (Message, error) {
	var msg Message

	switch f.MsgID {
	case MsgIDHeartbeat:
		msg = &Heartbeat{}
	case MsgIDCommandLong:
		msg = &CommandLong{}
	case MsgIDCommandAck:
		msg = &CommandAck{}
	case MsgIDCameraInformation:
		msg = &CameraInformation{}
	case MsgIDCameraSettings:
		msg = &CameraSettings{}
	case MsgIDStorageInformation:
		msg = &StorageInformation{}
	case MsgIDVideoStreamInformation:
		msg = &VideoStreamInformation{}
	case MsgIDSetVideoStreamSettings:
		msg = &SetVideoStreamSettings{}
	case MsgIDParamExtRequestRead:
		msg = &ParamExtRequestRead{}
	case MsgIDParamExtRequestList:
		msg = &ParamExtRequestList{}
	case MsgIDParamExtValue:
		msg = &ParamExtValue{}
	case MsgIDParamExtSet:
		msg = &ParamExtSet{}
	case MsgIDParamExtAck:
		msg = &ParamExtAck{}
	default:
		return nil, ErrUnknownMessage
	}

	if err := msg.Unmarshal(f.Payload); err != nil {
		return nil, err
	}

	return msg, nil
}

type Heartbeat struct {
	CustomMode     uint32
	Type           uint8
	Autopilot      uint8
	BaseMode       uint8
	SystemStatus   uint8
	MavlinkVersion uint8
}

func (m *Heartbeat) MsgID() uint32 { return MsgIDHeartbeat }

func (m *Heartbeat) Marshal() []byte {
	b := make([]byte, 9)
	binary.LittleEndian.PutUint32(b, m.CustomMode)
	b[4] = m.Type
	b[5] = m.Autopilot
	b[6] = m.BaseMode
	b[7] = m.SystemStatus
	b[8] = m.MavlinkVersion
	return b
}

func (m *Heartbeat) Unmarshal(b []byte) error {
	b = pad(b, 9)
	m.CustomMode = binary.LittleEndian.Uint32(b)
	m.Type = b[4]
	m.Autopilot = b[5]
	m.BaseMode = b[6]
	m.SystemStatus = b[7]
	m.MavlinkVersion = b[8]
	return nil
}

type CommandLong struct {
	Params          [7]float32
	Command         uint16
	TargetSystem    uint8
	TargetComponent uint8
	Confirmation    uint8
}

func (m *CommandLong) MsgID() uint32 { return MsgIDCommandLong }

func (m *CommandLong) Marshal() []byte {
	b := make([]byte, 33)
	for i, param := range m.Params {
		putFloat(b[i*4:], param)
	}
	binary.LittleEndian.PutUint16(b[28:], m.Command)
	b[30] = m.TargetSystem
	b[31] = m.TargetComponent
	b[32] = m.Confirmation
	return b
}

func (m *CommandLong) Unmarshal(b []byte) error {
	b = pad(b, 33)
	for i := range m.Params {
		m.Params[i] = getFloat(b[i*4:])
	}
	m.Command = binary.LittleEndian.Uint16(b[28:])
	m.TargetSystem = b[30]
	m.TargetComponent = b[31]
	m.Confirmation = b[32]
	return nil
}

type CommandAck struct {
	Command         uint16
	Result          uint8
	Progress        uint8
	ResultParam2    int32
	TargetSystem    uint8
	TargetComponent uint8
}

func (m *CommandAck) MsgID() uint32 { return MsgIDCommandAck }

func (m *CommandAck) Marshal() []byte {
	b := make([]byte, 10)
	binary.LittleEndian.PutUint16(b, m.Command)
	b[2] = m.Result
	b[3] = m.Progress
	binary.LittleEndian.PutUint32(b[4:], uint32(m.ResultParam2))
	b[8] = m.TargetSystem
	b[9] = m.TargetComponent
	return b
}

func (m *CommandAck) Unmarshal(b []byte) error {
	b = pad(b, 10)
	m.Command = binary.LittleEndian.Uint16(b)
	m.Result = b[2]
	m.Progress = b[3]
	m.ResultParam2 = int32(binary.LittleEndian.Uint32(b[4:]))
	m.TargetSystem = b[8]
	m.TargetComponent = b[9]
	return nil
}

type CameraInformation struct {
	TimeBootMs           uint32
	FirmwareVersion      uint32
	FocalLength          float32
	SensorSizeH          float32
	SensorSizeV          float32
	Flags                uint32
	ResolutionH          uint16
	ResolutionV          uint16
	CamDefinitionVersion uint16
	VendorName           string // 32 bytes
	ModelName            string // 32 bytes
	LensID               uint8
	CamDefinitionURI     string // 140 bytes
}

func (m *CameraInformation) MsgID() uint32 { return MsgIDCameraInformation }

func (m *CameraInformation) Marshal() []byte {
	b := make([]byte, 235)
	binary.LittleEndian.PutUint32(b, m.TimeBootMs)
	binary.LittleEndian.PutUint32(b[4:], m.FirmwareVersion)
	putFloat(b[8:], m.FocalLength)
	putFloat(b[12:], m.SensorSizeH)
	putFloat(b[16:], m.SensorSizeV)
	binary.LittleEndian.PutUint32(b[20:], m.Flags)
	binary.LittleEndian.PutUint16(b[24:], m.ResolutionH)
	binary.LittleEndian.PutUint16(b[26:], m.ResolutionV)
	binary.LittleEndian.PutUint16(b[28:], m.CamDefinitionVersion)
	putString(b[30:62], m.VendorName)
	putString(b[62:94], m.ModelName)
	b[94] = m.LensID
	putString(b[95:235], m.CamDefinitionURI)
	return b
}

func (m *CameraInformation) Unmarshal(b []byte) error {
	b = pad(b, 235)
	m.TimeBootMs = binary.LittleEndian.Uint32(b)
	m.FirmwareVersion = binary.LittleEndian.Uint32(b[4:])
	m.FocalLength = getFloat(b[8:])
	m.SensorSizeH = getFloat(b[12:])
	m.SensorSizeV = getFloat(b[16:])
	m.Flags = binary.LittleEndian.Uint32(b[20:])
	m.ResolutionH = binary.LittleEndian.Uint16(b[24:])
	m.ResolutionV = binary.LittleEndian.Uint16(b[26:])
	m.CamDefinitionVersion = binary.LittleEndian.Uint16(b[28:])
	m.VendorName = cstring(b[30:62])
	m.ModelName = cstring(b[62:94])
	m.LensID = b[94]
	m.CamDefinitionURI = cstring(b[95:235])
	return nil
}

type CameraSettings struct {
	TimeBootMs uint32
	ModeID     uint8
	ZoomLevel  float32
	FocusLevel float32
}

func (m *CameraSettings) MsgID() uint32 { return MsgIDCameraSettings }

func (m *CameraSettings) Marshal() []byte {
	b := make([]byte, 13)
	binary.LittleEndian.PutUint32(b, m.TimeBootMs)
	b[4] = m.ModeID
	putFloat(b[5:], m.ZoomLevel)
	putFloat(b[9:], m.FocusLevel)
	return b
}

func (m *CameraSettings) Unmarshal(b []byte) error {
	b = pad(b, 13)
	m.TimeBootMs = binary.LittleEndian.Uint32(b)
	m.ModeID = b[4]
	m.ZoomLevel = getFloat(b[5:])
	m.FocusLevel = getFloat(b[9:])
	return nil
}

type StorageInformation struct {
	TimeBootMs        uint32
	TotalCapacity     float32 // MiB
	UsedCapacity      float32
	AvailableCapacity float32
	ReadSpeed         float32 // MiB/s
	WriteSpeed        float32
	StorageID         uint8
	StorageCount      uint8
	Status            uint8
	Type              uint8
	Name              string // 32 bytes
	StorageUsage      uint8
}

func (m *StorageInformation) MsgID() uint32 { return MsgIDStorageInformation }

func (m *StorageInformation) Marshal() []byte {
	b := make([]byte, 61)
	binary.LittleEndian.PutUint32(b, m.TimeBootMs)
	putFloat(b[4:], m.TotalCapacity)
	putFloat(b[8:], m.UsedCapacity)
	putFloat(b[12:], m.AvailableCapacity)
	putFloat(b[16:], m.ReadSpeed)
	putFloat(b[20:], m.WriteSpeed)
	b[24] = m.StorageID
	b[25] = m.StorageCount
	b[26] = m.Status
	b[27] = m.Type
	putString(b[28:60], m.Name)
	b[60] = m.StorageUsage
	return b
}

func (m *StorageInformation) Unmarshal(b []byte) error {
	b = pad(b, 61)
	m.TimeBootMs = binary.LittleEndian.Uint32(b)
	m.TotalCapacity = getFloat(b[4:])
	m.UsedCapacity = getFloat(b[8:])
	m.AvailableCapacity = getFloat(b[12:])
	m.ReadSpeed = getFloat(b[16:])
	m.WriteSpeed = getFloat(b[20:])
	m.StorageID = b[24]
	m.StorageCount = b[25]
	m.Status = b[26]
	m.Type = b[27]
	m.Name = cstring(b[28:60])
	m.StorageUsage = b[60]
	return nil
}

type VideoStreamInformation struct {
	Framerate   float32
	Bitrate     uint32
	Flags       uint16
	ResolutionH uint16
	ResolutionV uint16
	Rotation    uint16
	HFOV        uint16
	StreamID    uint8
	Count       uint8
	Type        uint8
	Name        string // 32 bytes
	URI         string // 160 bytes
}

func (m *VideoStreamInformation) MsgID() uint32 { return MsgIDVideoStreamInformation }

func (m *VideoStreamInformation) Marshal() []byte {
	b := make([]byte, 213)
	putFloat(b, m.Framerate)
	binary.LittleEndian.PutUint32(b[4:], m.Bitrate)
	binary.LittleEndian.PutUint16(b[8:], m.Flags)
	binary.LittleEndian.PutUint16(b[10:], m.ResolutionH)
	binary.LittleEndian.PutUint16(b[12:], m.ResolutionV)
	binary.LittleEndian.PutUint16(b[14:], m.Rotation)
	binary.LittleEndian.PutUint16(b[16:], m.HFOV)
	b[18] = m.StreamID
	b[19] = m.Count
	b[20] = m.Type
	putString(b[21:53], m.Name)
	putString(b[53:213], m.URI)
	return b
}

func (m *VideoStreamInformation) Unmarshal(b []byte) error {
	b = pad(b, 213)
	m.Framerate = getFloat(b)
	m.Bitrate = binary.LittleEndian.Uint32(b[4:])
	m.Flags = binary.LittleEndian.Uint16(b[8:])
	m.ResolutionH = binary.LittleEndian.Uint16(b[10:])
	m.ResolutionV = binary.LittleEndian.Uint16(b[12:])
	m.Rotation = binary.LittleEndian.Uint16(b[14:])
	m.HFOV = binary.LittleEndian.Uint16(b[16:])
	m.StreamID = b[18]
	m.Count = b[19]
	m.Type = b[20]
	m.Name = cstring(b[21:53])
	m.URI = cstring(b[53:213])
	return nil
}

type SetVideoStreamSettings struct {
	Framerate       float32
	Bitrate         uint32
	ResolutionH     uint16
	ResolutionV     uint16
	Rotation        uint16
	TargetSystem    uint8
	TargetComponent uint8
	CameraID        uint8
	URI             string // 230 bytes
}

func (m *SetVideoStreamSettings) MsgID() uint32 { return MsgIDSetVideoStreamSettings }

func (m *SetVideoStreamSettings) Marshal() []byte {
	b := make([]byte, 247)
	putFloat(b, m.Framerate)
	binary.LittleEndian.PutUint32(b[4:], m.Bitrate)
	binary.LittleEndian.PutUint16(b[8:], m.ResolutionH)
	binary.LittleEndian.PutUint16(b[10:], m.ResolutionV)
	binary.LittleEndian.PutUint16(b[12:], m.Rotation)
	b[14] = m.TargetSystem
	b[15] = m.TargetComponent
	b[16] = m.CameraID
	putString(b[17:247], m.URI)
	return b
}

func (m *SetVideoStreamSettings) Unmarshal(b []byte) error {
	b = pad(b, 247)
	m.Framerate = getFloat(b)
	m.Bitrate = binary.LittleEndian.Uint32(b[4:])
	m.ResolutionH = binary.LittleEndian.Uint16(b[8:])
	m.ResolutionV = binary.LittleEndian.Uint16(b[10:])
	m.Rotation = binary.LittleEndian.Uint16(b[12:])
	m.TargetSystem = b[14]
	m.TargetComponent = b[15]
	m.CameraID = b[16]
	m.URI = cstring(b[17:247])
	return nil
}

type ParamExtRequestRead struct {
	ParamIndex      int16
	TargetSystem    uint8
	TargetComponent uint8
	ParamID         ParamID
}

func (m *ParamExtRequestRead) MsgID() uint32 { return MsgIDParamExtRequestRead }

func (m *ParamExtRequestRead) Marshal() []byte {
	b := make([]byte, 20)
	binary.LittleEndian.PutUint16(b, uint16(m.ParamIndex))
	b[2] = m.TargetSystem
	b[3] = m.TargetComponent
	copy(b[4:20], m.ParamID[:])
	return b
}

func (m *ParamExtRequestRead) Unmarshal(b []byte) error {
	b = pad(b, 20)
	m.ParamIndex = int16(binary.LittleEndian.Uint16(b))
	m.TargetSystem = b[2]
	m.TargetComponent = b[3]
	copy(m.ParamID[:], b[4:20])
	return nil
}

type ParamExtRequestList struct {
	TargetSystem    uint8
	TargetComponent uint8
}

func (m *ParamExtRequestList) MsgID() uint32 { return MsgIDParamExtRequestList }

func (m *ParamExtRequestList) Marshal() []byte {
	return []byte{m.TargetSystem, m.TargetComponent}
}

func (m *ParamExtRequestList) Unmarshal(b []byte) error {
	b = pad(b, 2)
	m.TargetSystem = b[0]
	m.TargetComponent = b[1]
	return nil
}

type ParamExtValue struct {
	ParamCount uint16
	ParamIndex uint16
	ParamID    ParamID
	ParamValue ParamValue
	ParamType  uint8
}

func (m *ParamExtValue) MsgID() uint32 { return MsgIDParamExtValue }

func (m *ParamExtValue) Marshal() []byte {
	b := make([]byte, 149)
	binary.LittleEndian.PutUint16(b, m.ParamCount)
	binary.LittleEndian.PutUint16(b[2:], m.ParamIndex)
	copy(b[4:20], m.ParamID[:])
	copy(b[20:148], m.ParamValue[:])
	b[148] = m.ParamType
	return b
}

func (m *ParamExtValue) Unmarshal(b []byte) error {
	b = pad(b, 149)
	m.ParamCount = binary.LittleEndian.Uint16(b)
	m.ParamIndex = binary.LittleEndian.Uint16(b[2:])
	copy(m.ParamID[:], b[4:20])
	copy(m.ParamValue[:], b[20:148])
	m.ParamType = b[148]
	return nil
}

type ParamExtSet struct {
	TargetSystem    uint8
	TargetComponent uint8
	ParamID         ParamID
	ParamValue      ParamValue
	ParamType       uint8
}

func (m *ParamExtSet) MsgID() uint32 { return MsgIDParamExtSet }

func (m *ParamExtSet) Marshal() []byte {
	b := make([]byte, 147)
	b[0] = m.TargetSystem
	b[1] = m.TargetComponent
	copy(b[2:18], m.ParamID[:])
	copy(b[18:146], m.ParamValue[:])
	b[146] = m.ParamType
	return b
}

func (m *ParamExtSet) Unmarshal(b []byte) error {
	b = pad(b, 147)
	m.TargetSystem = b[0]
	m.TargetComponent = b[1]
	copy(m.ParamID[:], b[2:18])
	copy(m.ParamValue[:], b[18:146])
	m.ParamType = b[146]
	return nil
}

type ParamExtAck struct {
	ParamID     ParamID
	ParamValue  ParamValue
	ParamType   uint8
	ParamResult uint8
}

func (m *ParamExtAck) MsgID() uint32 { return MsgIDParamExtAck }

func (m *ParamExtAck) Marshal() []byte {
	b := make([]byte, 146)
	copy(b[0:16], m.ParamID[:])
	copy(b[16:144], m.ParamValue[:])
	b[144] = m.ParamType
	b[145] = m.ParamResult
	return b
}

func (m *ParamExtAck) Unmarshal(b []byte) error {
	b = pad(b, 146)
	copy(m.ParamID[:], b[0:16])
	copy(m.ParamValue[:], b[16:144])
	m.ParamType = b[144]
	m.ParamResult = b[145]
	return nil
}

// pad restores zero bytes cut by v2 payload truncation
func pad(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	return append(append(make([]byte, 0, size), b...), make([]byte, size-len(b))...)
}

func putFloat(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

func getFloat(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

package mavlink

import "fmt"

// https://mavlink.io/en/guide/serialization.html

const (
	MagicV1 = 0xFE
	MagicV2 = 0xFD

	headerLenV1   = 6
	headerLenV2   = 10
	checksumLen   = 2
	signatureLen  = 13
	maxPayloadLen = 255

	// MaxFrameSize is the biggest encoded frame the server is allowed to send
	MaxFrameSize = 1024
)

const IncompatFlagSigned = 0x01

// Message IDs from common.xml
const (
	MsgIDHeartbeat              = 0
	MsgIDCommandLong            = 76
	MsgIDCommandAck             = 77
	MsgIDCameraInformation      = 259
	MsgIDCameraSettings         = 260
	MsgIDStorageInformation     = 261
	MsgIDVideoStreamInformation = 269
	MsgIDSetVideoStreamSettings = 270
	MsgIDParamExtRequestRead    = 320
	MsgIDParamExtRequestList    = 321
	MsgIDParamExtValue          = 322
	MsgIDParamExtSet            = 323
	MsgIDParamExtAck            = 324
)

// crcExtras - seed byte appended to the checksum of every known message
var crcExtras = map[uint32]byte{
	MsgIDHeartbeat:              50,
	MsgIDCommandLong:            152,
	MsgIDCommandAck:             143,
	MsgIDCameraInformation:      92,
	MsgIDCameraSettings:         146,
	MsgIDStorageInformation:     179,
	MsgIDVideoStreamInformation: 109,
	MsgIDSetVideoStreamSettings: 232,
	MsgIDParamExtRequestRead:    243,
	MsgIDParamExtRequestList:    88,
	MsgIDParamExtValue:          243,
	MsgIDParamExtSet:            78,
	MsgIDParamExtAck:            132,
}

var messageNames = map[uint32]string{
	MsgIDHeartbeat:              "HEARTBEAT",
	MsgIDCommandLong:            "COMMAND_LONG",
	MsgIDCommandAck:             "COMMAND_ACK",
	MsgIDCameraInformation:      "CAMERA_INFORMATION",
	MsgIDCameraSettings:         "CAMERA_SETTINGS",
	MsgIDStorageInformation:     "STORAGE_INFORMATION",
	MsgIDVideoStreamInformation: "VIDEO_STREAM_INFORMATION",
	MsgIDSetVideoStreamSettings: "SET_VIDEO_STREAM_SETTINGS",
	MsgIDParamExtRequestRead:    "PARAM_EXT_REQUEST_READ",
	MsgIDParamExtRequestList:    "PARAM_EXT_REQUEST_LIST",
	MsgIDParamExtValue:          "PARAM_EXT_VALUE",
	MsgIDParamExtSet:            "PARAM_EXT_SET",
	MsgIDParamExtAck:            "PARAM_EXT_ACK",
}

func MessageName(id uint32) string {
	if name, ok := messageNames[id]; ok {
		return name
	}
	return fmt.Sprintf("MSG_%d", id)
}

// Component IDs
const (
	CompIDCamera  = 100
	CompIDCamera6 = 105
)

// Commands (MAV_CMD)
const (
	CmdRequestCameraInformation      = 521
	CmdRequestCameraSettings         = 522
	CmdRequestStorageInformation     = 525
	CmdStorageFormat                 = 526
	CmdRequestCameraCaptureStatus    = 527
	CmdResetCameraSettings           = 529
	CmdSetCameraMode                 = 530
	CmdImageStartCapture             = 2000
	CmdImageStopCapture              = 2001
	CmdRequestCameraImageCapture     = 2002
	CmdDoTriggerControl              = 2003
	CmdVideoStartCapture             = 2500
	CmdVideoStopCapture              = 2501
	CmdVideoStartStreaming           = 2502
	CmdVideoStopStreaming            = 2503
	CmdRequestVideoStreamInformation = 2504
)

var commandNames = map[uint16]string{
	CmdRequestCameraInformation:      "REQUEST_CAMERA_INFORMATION",
	CmdRequestCameraSettings:         "REQUEST_CAMERA_SETTINGS",
	CmdRequestStorageInformation:     "REQUEST_STORAGE_INFORMATION",
	CmdStorageFormat:                 "STORAGE_FORMAT",
	CmdRequestCameraCaptureStatus:    "REQUEST_CAMERA_CAPTURE_STATUS",
	CmdResetCameraSettings:           "RESET_CAMERA_SETTINGS",
	CmdSetCameraMode:                 "SET_CAMERA_MODE",
	CmdImageStartCapture:             "IMAGE_START_CAPTURE",
	CmdImageStopCapture:              "IMAGE_STOP_CAPTURE",
	CmdRequestCameraImageCapture:     "REQUEST_CAMERA_IMAGE_CAPTURE",
	CmdDoTriggerControl:              "DO_TRIGGER_CONTROL",
	CmdVideoStartCapture:             "VIDEO_START_CAPTURE",
	CmdVideoStopCapture:              "VIDEO_STOP_CAPTURE",
	CmdVideoStartStreaming:           "VIDEO_START_STREAMING",
	CmdVideoStopStreaming:            "VIDEO_STOP_STREAMING",
	CmdRequestVideoStreamInformation: "REQUEST_VIDEO_STREAM_INFORMATION",
}

// CommandName returns MAV_CMD name or empty string for unknown command
func CommandName(cmd uint16) string {
	return commandNames[cmd]
}

// MAV_RESULT
const (
	ResultAccepted = 0
	ResultFailed   = 4
)

// PARAM_ACK
const (
	ParamAckAccepted         = 0
	ParamAckValueUnsupported = 1
	ParamAckFailed           = 2
	ParamAckInProgress       = 3
)

// HEARTBEAT fields
const (
	TypeGeneric       = 0
	AutopilotInvalid  = 8
	ModePreflight     = 0
	StateActive       = 4
	ProtocolVersionV2 = 3
)

// VIDEO_STREAM_TYPE and VIDEO_STREAM_STATUS_FLAGS
const (
	VideoStreamTypeRTSP    = 0
	VideoStreamFlagRunning = 1
)

// Message - one of the supported payloads
type Message interface {
	MsgID() uint32
	Marshal() []byte
	Unmarshal(b []byte) error
}

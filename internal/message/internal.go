package message

import "fmt"

// InternalType enumerates the INTERNAL command sub-types.
type InternalType uint8

// Internal sub-types. The proxy services IdRequest and DiscoverResponse
// locally; everything else is forwarded to the controller.
const (
	IBatteryLevel         InternalType = 0  // battery level report, percent 0-100
	ITime                 InternalType = 1  // node requests current time
	IVersion              InternalType = 2  // gateway version probe, used as heartbeat
	IIdRequest            InternalType = 3  // node requests a unique node id
	IIdResponse           InternalType = 4  // id response, payload carries the node id
	IInclusionMode        InternalType = 5  // start/stop inclusion mode
	IConfig               InternalType = 6  // metric/imperial config request
	IFindParent           InternalType = 7  // broadcast search for a parent node
	IFindParentResponse   InternalType = 8  // reply to FindParent
	ILogMessage           InternalType = 9  // gateway trace log
	IChildren             InternalType = 10 // repeater routing table transfer
	ISketchName           InternalType = 11 // sketch name report
	ISketchVersion        InternalType = 12 // sketch version report
	IReboot               InternalType = 13 // request for node to reboot (OTA)
	IGatewayReady         InternalType = 14 // gateway startup complete
	ISigningPresentation  InternalType = 15 // signing preferences
	INonceRequest         InternalType = 16 // nonce request
	INonceResponse        InternalType = 17 // nonce response
	IHeartbeatRequest     InternalType = 18 // heartbeat request
	IPresentation         InternalType = 19 // presentation marker
	IDiscoverRequest      InternalType = 20 // discover request
	IDiscoverResponse     InternalType = 21 // discover response, payload is parent node id
	IHeartbeatResponse    InternalType = 22 // heartbeat response
	ILocked               InternalType = 23 // node locked, reason in payload
	IPing                 InternalType = 24 // ping with hop counter
	IPong                 InternalType = 25 // pong with hop counter
	IRegistrationRequest  InternalType = 26 // registration request to gateway
	IRegistrationResponse InternalType = 27 // registration response
	IDebug                InternalType = 28 // debug message
)

const maxInternalType = IDebug

// InternalMessage is a parsed INTERNAL frame. The payload is ASCII.
type InternalMessage struct {
	NodeID        uint8
	ChildSensorID uint8
	Ack           uint8
	SubType       InternalType
	Payload       string
}

func buildInternal(nodeID, childSensorID, ack, subType uint8, payload string) (InternalMessage, error) {
	if subType > uint8(maxInternalType) {
		return InternalMessage{}, ErrInvalidSubType
	}
	return InternalMessage{
		NodeID:        nodeID,
		ChildSensorID: childSensorID,
		Ack:           ack,
		SubType:       InternalType(subType),
		Payload:       payload,
	}, nil
}

// Command implements Message.
func (m InternalMessage) Command() CommandType { return CmdInternal }

func (m InternalMessage) String() string {
	return fmt.Sprintf("%d;%d;%d;%d;%d;%s\n",
		m.NodeID, m.ChildSensorID, uint8(CmdInternal), m.Ack, uint8(m.SubType), m.Payload)
}

// IsIdRequest reports whether this is the broadcast node-id allocation
// request: node 255, child 255, ack 0, sub-type IdRequest, payload "0".
func (m InternalMessage) IsIdRequest() bool {
	return m.NodeID == BroadcastNodeID &&
		m.ChildSensorID == BroadcastNodeID &&
		m.Ack == 0 &&
		m.SubType == IIdRequest &&
		m.Payload == "0"
}

// IsDiscoverResponse reports whether this frame carries network topology:
// child 255, sub-type DiscoverResponse, payload is the parent node id.
func (m InternalMessage) IsDiscoverResponse() bool {
	return m.ChildSensorID == BroadcastNodeID && m.SubType == IDiscoverResponse
}

// BroadcastNodeID is the broadcast / unassigned node address.
const BroadcastNodeID uint8 = 255

// Heartbeat is the liveness probe written to every link: an INTERNAL
// Version request with an empty payload.
const Heartbeat = "0;255;3;0;2;\n"

// IdRequestLine is the raw broadcast id-allocation frame, matched literally
// by the router as a fast path before parsing.
const IdRequestLine = "255;255;3;0;3;0\n"

// RebootLine renders the INTERNAL Reboot frame for a node, pushed onto the
// gateway outbound channel by the reboot API endpoint.
func RebootLine(nodeID uint8) string {
	return fmt.Sprintf("%d;255;3;0;13;0\n", nodeID)
}

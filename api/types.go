// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants for message metadata.

package api

import "fmt"

// Priority is the service level of a message. Higher value is higher priority.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityNet // network control, strictly highest

	NumPriorities = 4
)

// Valid reports whether p is one of the closed set of priority levels.
func (p Priority) Valid() bool { return p < NumPriorities }

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityNet:
		return "net"
	default:
		return fmt.Sprintf("priority(%d)", uint8(p))
	}
}

// ParsePriority maps a textual level back to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "normal", "":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	case "net", "network-control":
		return PriorityNet, nil
	}
	return 0, ErrInvalidArgs.WithContext("priority", s)
}

// MessageType identifies what a message carries.
type MessageType uint8

const (
	TypeIPv6        MessageType = iota // A full uncompressed IPv6 packet.
	TypeMacDataPoll                    // A MAC data poll frame.
	TypeSupervision                    // A child supervision frame.
	TypeOther                          // Other (data) message.
)

func (t MessageType) String() string {
	switch t {
	case TypeIPv6:
		return "ipv6"
	case TypeMacDataPoll:
		return "mac-data-poll"
	case TypeSupervision:
		return "supervision"
	case TypeOther:
		return "other"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// SubType narrows the protocol purpose of a message.
type SubType uint8

const (
	SubTypeNone SubType = iota
	SubTypeMLEAnnounce
	SubTypeMLEDiscoverRequest
	SubTypeMLEDiscoverResponse
	SubTypeJoinerEntrust
	SubTypeMPLRetransmission
	SubTypeMLEGeneral
	SubTypeJoinerFinalizeResponse
	SubTypeMLEChildUpdateRequest
	SubTypeMLEDataResponse
	SubTypeMLEChildIDRequest
)

var subTypeNames = [...]string{
	SubTypeNone:                   "none",
	SubTypeMLEAnnounce:            "mle-announce",
	SubTypeMLEDiscoverRequest:     "mle-discover-request",
	SubTypeMLEDiscoverResponse:    "mle-discover-response",
	SubTypeJoinerEntrust:          "joiner-entrust",
	SubTypeMPLRetransmission:      "mpl-retransmission",
	SubTypeMLEGeneral:             "mle-general",
	SubTypeJoinerFinalizeResponse: "joiner-finalize-response",
	SubTypeMLEChildUpdateRequest:  "mle-child-update-request",
	SubTypeMLEDataResponse:        "mle-data-response",
	SubTypeMLEChildIDRequest:      "mle-child-id-request",
}

func (s SubType) String() string {
	if int(s) < len(subTypeNames) {
		return subTypeNames[s]
	}
	return fmt.Sprintf("subtype(%d)", uint8(s))
}

// IsMLE reports whether the subtype belongs to the MLE family.
func (s SubType) IsMLE() bool {
	switch s {
	case SubTypeMLEAnnounce, SubTypeMLEDiscoverRequest, SubTypeMLEDiscoverResponse,
		SubTypeMLEGeneral, SubTypeMLEChildUpdateRequest, SubTypeMLEDataResponse,
		SubTypeMLEChildIDRequest:
		return true
	}
	return false
}

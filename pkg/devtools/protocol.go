package devtools

import "encoding/json"

type MessageType string

const (
	MsgTypeConnect  MessageType = "connect"
	MsgTypeSnapshot MessageType = "snapshot"
	MsgTypeDetach   MessageType = "detach"
)

// Message is the JSON frame sent to inspectors. Seq increases with every
// published change across all stores.
type Message struct {
	Type     MessageType     `json:"type"`
	Seq      uint64          `json:"seq"`
	Store    string          `json:"store,omitempty"`
	Stores   []string        `json:"stores,omitempty"`
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
}

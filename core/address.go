package core

import "fmt"

// DefaultKey is the instance key used when an address is built from a type
// name alone.
const DefaultKey = "default"

// Address identifies one agent instance inside a Runtime. Type selects the
// registered factory, Key distinguishes instances of the same type.
type Address struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// NewAddress returns the address of the default instance of typ.
func NewAddress(typ string) Address {
	return Address{Type: typ, Key: DefaultKey}
}

// IsZero reports whether a is the empty address.
func (a Address) IsZero() bool { return a.Type == "" && a.Key == "" }

// String renders the address as "type/key".
func (a Address) String() string { return fmt.Sprintf("%s/%s", a.Type, a.Key) }

// Message is the only payload exchanged between agents.
type Message struct {
	Content string `json:"content"`
}

// NewMessage wraps content into a Message.
func NewMessage(content string) Message { return Message{Content: content} }

package secrets

import "encoding/json"

// Placeholder is the string written in place of a secret value whenever a
// payload is rendered without secrets.
const Placeholder = "**********"

// Text holds a secret string. It renders as Placeholder through String,
// GoString and MarshalJSON; the underlying value is only reachable through
// Reveal.
type Text struct {
	value string
}

// NewText wraps a plain string as a secret.
func NewText(value string) Text {
	return Text{value: value}
}

// Reveal returns the underlying value.
func (t Text) Reveal() string {
	return t.value
}

// IsZero reports whether the secret is empty.
func (t Text) IsZero() bool {
	return t.value == ""
}

func (t Text) String() string {
	if t.value == "" {
		return ""
	}
	return Placeholder
}

// GoString keeps %#v from printing the underlying value.
func (t Text) GoString() string {
	return t.String()
}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts a plain string literal. Decoding a payload that was
// rendered without secrets leaves Placeholder as the value.
func (t *Text) UnmarshalJSON(raw []byte) error {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	t.value = value
	return nil
}

// Bytes holds a secret byte slice. Payloads carry it as a string, so the
// revealed form of Bytes in a rendered payload is string(value).
type Bytes struct {
	value []byte
}

// NewBytes wraps a byte slice as a secret. The slice is copied.
func NewBytes(value []byte) Bytes {
	if len(value) == 0 {
		return Bytes{}
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return Bytes{value: cp}
}

// Reveal returns a copy of the underlying bytes.
func (b Bytes) Reveal() []byte {
	if len(b.value) == 0 {
		return nil
	}
	cp := make([]byte, len(b.value))
	copy(cp, b.value)
	return cp
}

// IsZero reports whether the secret is empty.
func (b Bytes) IsZero() bool {
	return len(b.value) == 0
}

func (b Bytes) String() string {
	if len(b.value) == 0 {
		return ""
	}
	return Placeholder
}

// GoString keeps %#v from printing the underlying value.
func (b Bytes) GoString() string {
	return b.String()
}

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON accepts a plain string literal and stores its bytes.
func (b *Bytes) UnmarshalJSON(raw []byte) error {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	if value == "" {
		b.value = nil
		return nil
	}
	b.value = []byte(value)
	return nil
}

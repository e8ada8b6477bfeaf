package secrets

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestTextRendersPlaceholder(t *testing.T) {
	secret := NewText("hunter2")
	if got := secret.String(); got != Placeholder {
		t.Fatalf("want placeholder, got %q", got)
	}
	if got := fmt.Sprintf("%v %s %#v", secret, secret, secret); got != "********** ********** **********" {
		t.Fatalf("formatted output leaked: %q", got)
	}
	if secret.Reveal() != "hunter2" {
		t.Fatalf("reveal lost the value")
	}
}

func TestTextZeroValue(t *testing.T) {
	var secret Text
	if !secret.IsZero() {
		t.Fatalf("expected zero")
	}
	if got := secret.String(); got != "" {
		t.Fatalf("zero secret should render empty, got %q", got)
	}
	raw, err := json.Marshal(secret)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `""` {
		t.Fatalf("want empty string, got %s", raw)
	}
}

func TestTextJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(NewText("hunter2"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"`+Placeholder+`"` {
		t.Fatalf("marshal leaked: %s", raw)
	}

	var decoded Text
	if err := json.Unmarshal([]byte(`"plain"`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Reveal() != "plain" {
		t.Fatalf("want plain, got %q", decoded.Reveal())
	}
}

func TestBytesRevealCopies(t *testing.T) {
	src := []byte("abc")
	secret := NewBytes(src)
	src[0] = 'x'
	if string(secret.Reveal()) != "abc" {
		t.Fatalf("constructor should copy input")
	}

	out := secret.Reveal()
	out[0] = 'x'
	if string(secret.Reveal()) != "abc" {
		t.Fatalf("reveal should copy output")
	}
}

func TestBytesJSON(t *testing.T) {
	raw, err := json.Marshal(NewBytes([]byte("y")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"`+Placeholder+`"` {
		t.Fatalf("marshal leaked: %s", raw)
	}

	var decoded Bytes
	if err := json.Unmarshal([]byte(`"y"`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(decoded.Reveal()) != "y" {
		t.Fatalf("want y, got %q", decoded.Reveal())
	}
}

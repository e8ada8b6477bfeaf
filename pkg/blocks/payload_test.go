package blocks

import (
	"testing"

	"github.com/goliatone/go-blockstore/pkg/secrets"
)

type deployTarget struct {
	Base
	Region   string         `json:"region"`
	Override *secrets.Text  `json:"override"`
	Fallback *dbCredentials `json:"fallback"`
}

func (*deployTarget) BlockTypeName() string { return "deploy-target" }

type signingKey struct {
	Base
	KeyID  string        `json:"key_id"`
	Secret secrets.Bytes `json:"secret"`
}

func (*signingKey) BlockTypeName() string { return "signing-key" }

func TestToPayloadRedactsSecrets(t *testing.T) {
	creds := &apiCredentials{
		Endpoint: "https://api.internal",
		Token:    secrets.NewText("tok-123"),
		Retries:  7,
	}

	redacted, err := ToPayload(creds, false)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if redacted["token"] != secrets.Placeholder {
		t.Fatalf("expected placeholder, got %v", redacted["token"])
	}
	if redacted["endpoint"] != "https://api.internal" {
		t.Fatalf("unexpected endpoint %v", redacted["endpoint"])
	}
	if redacted["retries"] != float64(7) {
		t.Fatalf("numbers normalize through the JSON codec, got %v (%T)", redacted["retries"], redacted["retries"])
	}

	revealed, err := ToPayload(creds, true)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if revealed["token"] != "tok-123" {
		t.Fatalf("expected revealed token, got %v", revealed["token"])
	}
}

func TestToPayloadInlinesNestedBlocks(t *testing.T) {
	wh := &warehouse{
		Host: "wh1.internal",
		Creds: dbCredentials{
			Username: "loader",
			Password: secrets.NewText("s3cret"),
		},
	}

	redacted, err := ToPayload(wh, false)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	nested, ok := redacted["creds"].(map[string]any)
	if !ok {
		t.Fatalf("nested block should render inline, got %v", redacted["creds"])
	}
	if nested["username"] != "loader" || nested["password"] != secrets.Placeholder {
		t.Fatalf("unexpected nested payload %v", nested)
	}

	revealed, err := ToPayload(wh, true)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if revealed["creds"].(map[string]any)["password"] != "s3cret" {
		t.Fatal("nested secret should reveal with the parent")
	}
}

func TestToPayloadSkipsNilPointers(t *testing.T) {
	target := &deployTarget{Region: "us-east-1"}

	payload, err := ToPayload(target, true)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if _, ok := payload["override"]; ok {
		t.Fatal("nil pointer secret should stay out of the payload")
	}
	if _, ok := payload["fallback"]; ok {
		t.Fatal("nil pointer block should stay out of the payload")
	}

	tok := secrets.NewText("over")
	target.Override = &tok
	target.Fallback = &dbCredentials{Username: "fb"}
	payload, err = ToPayload(target, true)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["override"] != "over" {
		t.Fatalf("unexpected override %v", payload["override"])
	}
	if payload["fallback"].(map[string]any)["username"] != "fb" {
		t.Fatalf("unexpected fallback %v", payload["fallback"])
	}
}

func TestToPayloadSecretBytes(t *testing.T) {
	key := &signingKey{KeyID: "k1", Secret: secrets.NewBytes([]byte("raw-bytes"))}

	redacted, err := ToPayload(key, false)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if redacted["secret"] != secrets.Placeholder {
		t.Fatalf("expected placeholder, got %v", redacted["secret"])
	}

	revealed, err := ToPayload(key, true)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if revealed["secret"] != "raw-bytes" {
		t.Fatalf("byte secrets reveal as strings, got %v", revealed["secret"])
	}
}

func TestToPayloadUnionField(t *testing.T) {
	route := &alertRoute{Name: "oncall"}

	payload, err := ToPayload(route, true)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if _, ok := payload["target"]; ok {
		t.Fatal("nil union field should stay out of the payload")
	}

	route.Target = &emailDest{Address: "ops@acme.io"}
	payload, err = ToPayload(route, true)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["target"].(map[string]any)["address"] != "ops@acme.io" {
		t.Fatalf("unexpected union payload %v", payload["target"])
	}
}

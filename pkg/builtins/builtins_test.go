package builtins

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-blockstore/internal/storage/memory"
	"github.com/goliatone/go-blockstore/pkg/blocks"
	"github.com/goliatone/go-blockstore/pkg/domain"
	"github.com/goliatone/go-blockstore/pkg/interfaces/logger"
	"github.com/goliatone/go-blockstore/pkg/interfaces/store"
	"github.com/goliatone/go-blockstore/pkg/secrets"
)

func newTestClient(t *testing.T) (*blocks.Client, *memory.BlockTypeRepository, *memory.BlockDocumentRepository) {
	t.Helper()
	types := memory.NewBlockTypeRepository()
	schemas := memory.NewBlockSchemaRepository()
	documents := memory.NewBlockDocumentRepository(schemas)

	client, err := blocks.NewClient(blocks.Dependencies{
		Types:     types,
		Schemas:   schemas,
		Documents: documents,
		Registry:  blocks.NewRegistry(),
		Logger:    &logger.Nop{},
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return client, types, documents
}

func TestRegisterAll(t *testing.T) {
	ctx := context.Background()
	client, types, _ := newTestClient(t)

	if err := RegisterAll(ctx, client); err != nil {
		t.Fatalf("register all: %v", err)
	}
	for _, name := range []string{"secret-text", "json-data", "date-time", "webhook"} {
		rec, err := types.GetByName(ctx, name)
		if err != nil {
			t.Fatalf("type %q: %v", name, err)
		}
		if rec.Description == "" {
			t.Fatalf("type %q should carry a description", name)
		}
		if rec.CodeExample == "" {
			t.Fatalf("type %q should carry a code example", name)
		}
	}

	hook, err := types.GetByName(ctx, "webhook")
	if err != nil {
		t.Fatalf("webhook type: %v", err)
	}
	if len(hook.Capabilities) != 1 || hook.Capabilities[0] != "call-webhook" {
		t.Fatalf("unexpected webhook capabilities %v", hook.Capabilities)
	}
}

func TestSecretTextRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, types, documents := newTestClient(t)

	token := &SecretText{Value: secrets.NewText("s3cr3t")}
	if _, err := client.Save(ctx, token, blocks.WithName("github-token")); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := &SecretText{}
	if err := client.Load(ctx, loaded, "github-token"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Value.Reveal() != "s3cr3t" {
		t.Fatalf("unexpected value %q", loaded.Value.Reveal())
	}

	typeRec, err := types.GetByName(ctx, "secret-text")
	if err != nil {
		t.Fatalf("type: %v", err)
	}
	doc, err := documents.GetByName(ctx, typeRec.ID, "github-token", store.ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if doc.Data["value"] != secrets.Placeholder {
		t.Fatalf("store read should redact, got %v", doc.Data["value"])
	}
}

func TestJSONDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	cfg := &JSONData{Value: map[string]any{
		"retries": 3,
		"hosts":   []any{"db1", "db2"},
	}}
	if _, err := client.Save(ctx, cfg, blocks.WithName("loader-config")); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := &JSONData{}
	if err := client.Load(ctx, loaded, "loader-config"); err != nil {
		t.Fatalf("load: %v", err)
	}
	value, ok := loaded.Value.(map[string]any)
	if !ok {
		t.Fatalf("unexpected value %T", loaded.Value)
	}
	if value["retries"] != float64(3) {
		t.Fatalf("unexpected retries %v", value["retries"])
	}
	hosts, ok := value["hosts"].([]any)
	if !ok || len(hosts) != 2 || hosts[0] != "db1" {
		t.Fatalf("unexpected hosts %v", value["hosts"])
	}
}

func TestDateTimeValueRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	at := time.Date(2024, 5, 4, 12, 30, 0, 0, time.UTC)
	mark := &DateTimeValue{Value: at}
	if _, err := client.Save(ctx, mark, blocks.WithName("last-sync")); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := &DateTimeValue{}
	if err := client.Load(ctx, loaded, "last-sync"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Value.Equal(at) {
		t.Fatalf("timestamp moved: %v vs %v", loaded.Value, at)
	}
}

func TestWebhookSchemaDefault(t *testing.T) {
	ctx := context.Background()
	client, _, documents := newTestClient(t)

	typeRec, schemaRec, err := client.Register(ctx, &Webhook{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// a payload written without the method key takes the schema default
	raw := &domain.BlockDocument{
		Name:          "ci-hook",
		BlockTypeID:   typeRec.ID,
		BlockSchemaID: schemaRec.ID,
		Data: domain.JSONMap{
			"url":   "https://hooks.acme.io/build",
			"token": "t0k3n",
		},
	}
	raw.EnsureID()
	if err := documents.Create(ctx, raw); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded := &Webhook{}
	if err := client.Load(ctx, loaded, "ci-hook"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Method != "POST" {
		t.Fatalf("unexpected method %q", loaded.Method)
	}
	if loaded.Token.Reveal() != "t0k3n" {
		t.Fatalf("unexpected token %q", loaded.Token.Reveal())
	}
}

func TestWebhookValidatesOnLoad(t *testing.T) {
	ctx := context.Background()
	client, _, documents := newTestClient(t)

	typeRec, schemaRec, err := client.Register(ctx, &Webhook{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	raw := &domain.BlockDocument{
		Name:          "no-url",
		BlockTypeID:   typeRec.ID,
		BlockSchemaID: schemaRec.ID,
		Data:          domain.JSONMap{"url": "  "},
	}
	raw.EnsureID()
	if err := documents.Create(ctx, raw); err != nil {
		t.Fatalf("create: %v", err)
	}

	err = client.Load(ctx, &Webhook{}, "no-url")
	if err == nil || !strings.Contains(err.Error(), "webhook url is required") {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

// Package builtins ships ready-made block types for common needs: single
// secret values, free-form JSON payloads, timestamps and webhook targets.
// Register them with RegisterAll or individually through a client.
package builtins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-blockstore/pkg/blocks"
	"github.com/goliatone/go-blockstore/pkg/secrets"
)

// SecretText stores a single secret string under a name.
type SecretText struct {
	blocks.Base
	Value secrets.Text `json:"value"`
}

func (*SecretText) BlockTypeName() string { return "secret-text" }

func (*SecretText) BlockDoc() string {
	return `
	Store a single secret string, such as an API key or a password.

	The value is redacted on every read that does not ask for secrets.

	Example:
	    token := &builtins.SecretText{Value: secrets.NewText("s3cr3t")}
	    _, err := client.Save(ctx, token, blocks.WithName("github-token"))
	`
}

// JSONData stores an arbitrary JSON payload under a name.
type JSONData struct {
	blocks.Base
	Value any `json:"value"`
}

func (*JSONData) BlockTypeName() string { return "json-data" }

func (*JSONData) BlockDoc() string {
	return `
	Store an arbitrary JSON payload under a name.

	The value keeps whatever shape it was saved with: objects, arrays,
	strings or numbers.

	Example:
	    cfg := &builtins.JSONData{Value: map[string]any{"retries": 3}}
	    _, err := client.Save(ctx, cfg, blocks.WithName("loader-config"))
	`
}

// DateTimeValue stores a single timestamp, for example the high-water mark
// of an incremental job.
type DateTimeValue struct {
	blocks.Base
	Value time.Time `json:"value"`
}

func (*DateTimeValue) BlockTypeName() string { return "date-time" }

func (*DateTimeValue) BlockDoc() string {
	return `
	Store a single timestamp.

	Useful as a persisted high-water mark between runs of a job.

	Example:
	    mark := &builtins.DateTimeValue{Value: time.Now().UTC()}
	    _, err := client.Save(ctx, mark, blocks.WithName("last-sync"), blocks.WithOverwrite())
	`
}

// Webhook describes an HTTP callback target with its method and auth token.
type Webhook struct {
	blocks.Base
	Method string       `json:"method" default:"POST"`
	URL    string       `json:"url"`
	Token  secrets.Text `json:"token"`
}

func (*Webhook) BlockTypeName() string { return "webhook" }

func (*Webhook) BlockCapabilities() []string { return []string{"call-webhook"} }

func (*Webhook) BlockDoc() string {
	return `
	Describe an HTTP callback target.

	The token is a secret; the URL and method are stored in clear.

	Example:
	    hook := &builtins.Webhook{
	        URL:   "https://hooks.acme.io/build",
	        Token: secrets.NewText("t0k3n"),
	    }
	    _, err := client.Save(ctx, hook, blocks.WithName("ci-hook"))
	`
}

func (w *Webhook) Validate() error {
	if strings.TrimSpace(w.URL) == "" {
		return errors.New("webhook url is required")
	}
	return nil
}

// All returns a fresh instance of every built-in block type.
func All() []blocks.Block {
	return []blocks.Block{
		&SecretText{},
		&JSONData{},
		&DateTimeValue{},
		&Webhook{},
	}
}

// RegisterAll persists the descriptor and schema of every built-in block
// type through the client.
func RegisterAll(ctx context.Context, client *blocks.Client) error {
	for _, b := range All() {
		if _, _, err := client.Register(ctx, b); err != nil {
			return fmt.Errorf("builtins: register %s: %w", blocks.TypeNameFor(b), err)
		}
	}
	return nil
}

package blocks

import (
	"reflect"
	"testing"
)

type ghRepo struct {
	Base
	Owner string `json:"owner"`
}

func (*ghRepo) BlockTypeName() string { return "github-repo" }

func (*ghRepo) BlockDoc() string {
	return `
	Interact with files stored in a GitHub repository.

	Clones happen over HTTPS with the token when one is set.

	Example:
	    repo := &ghRepo{Owner: "acme"}
	    err := client.Load(ctx, repo, "prod")
	`
}

type s3Bucket struct {
	Base
	Bucket string `json:"bucket"`
}

func (*s3Bucket) BlockTypeName() string { return "s3-bucket" }

func (*s3Bucket) BlockDoc() string { return "Parsed description that loses." }

func (*s3Bucket) BlockDescription() string { return "Reads and writes S3 objects." }

func (*s3Bucket) BlockCodeExample() string {
	return `
		bucket := &s3Bucket{}
		bucket.Bucket = "data"
	`
}

func (*s3Bucket) BlockLogoURL() string { return "https://example.com/s3.png" }

func (*s3Bucket) BlockDocumentationURL() string { return "https://example.com/docs/s3" }

type legacyBlock struct {
	Base
}

func (*legacyBlock) BlockTypeName() string { return "  " }

func TestTypeNameFor(t *testing.T) {
	if got := TypeNameFor(&ghRepo{}); got != "github-repo" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := TypeNameFor(&auditRecord{}); got != "auditRecord" {
		t.Fatalf("expected the Go type name, got %q", got)
	}
	if got := TypeNameFor(&legacyBlock{}); got != "legacyBlock" {
		t.Fatalf("blank override should fall back to the Go type name, got %q", got)
	}
}

func TestDescriptorForParsesDoc(t *testing.T) {
	desc := DescriptorFor(&ghRepo{})
	if desc.Name != "github-repo" {
		t.Fatalf("unexpected name %q", desc.Name)
	}
	if desc.Description != "Interact with files stored in a GitHub repository." {
		t.Fatalf("unexpected description %q", desc.Description)
	}
	want := "repo := &ghRepo{Owner: \"acme\"}\nerr := client.Load(ctx, repo, \"prod\")"
	if desc.CodeExample != want {
		t.Fatalf("unexpected code example %q", desc.CodeExample)
	}
}

func TestDescriptorForExplicitOverrides(t *testing.T) {
	desc := DescriptorFor(&s3Bucket{})
	if desc.Description != "Reads and writes S3 objects." {
		t.Fatalf("explicit description should win, got %q", desc.Description)
	}
	want := "bucket := &s3Bucket{}\nbucket.Bucket = \"data\""
	if desc.CodeExample != want {
		t.Fatalf("explicit code example should dedent, got %q", desc.CodeExample)
	}
	if desc.LogoURL != "https://example.com/s3.png" {
		t.Fatalf("unexpected logo url %q", desc.LogoURL)
	}
	if desc.DocumentationURL != "https://example.com/docs/s3" {
		t.Fatalf("unexpected documentation url %q", desc.DocumentationURL)
	}
}

func TestDescriptorForCapabilities(t *testing.T) {
	desc := DescriptorFor(&bucketBlock{})
	got := []string(desc.Capabilities)
	if !reflect.DeepEqual(got, []string{"replication", "versioning"}) {
		t.Fatalf("unexpected capabilities %v", got)
	}
}

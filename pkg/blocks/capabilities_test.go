package blocks

import (
	"reflect"
	"testing"
)

type versionedStore struct{}

func (*versionedStore) BlockCapabilities() []string { return []string{"versioning"} }

type replicatedStore struct {
	versionedStore
}

func (*replicatedStore) BlockCapabilities() []string { return []string{"replication"} }

type bucketBlock struct {
	Base
	replicatedStore
	Name string `json:"name"`
}

func (*bucketBlock) BlockTypeName() string { return "bucket" }

type readOnlyPart struct{}

func (*readOnlyPart) BlockCapabilities() []string { return []string{"read"} }

type writeOnlyPart struct{}

func (*writeOnlyPart) BlockCapabilities() []string { return []string{"write"} }

// syncTarget promotes BlockCapabilities ambiguously, so the union comes
// entirely from walking the embedded parts.
type syncTarget struct {
	Base
	readOnlyPart
	writeOnlyPart
}

func (*syncTarget) BlockTypeName() string { return "sync-target" }

type auditedStore struct {
	Base
	readOnlyPart
}

func (*auditedStore) BlockCapabilities() []string { return []string{"read", "audit"} }

type plainNote struct {
	Base
	Text string `json:"text"`
}

func TestCapabilitiesUnionAcrossEmbedded(t *testing.T) {
	got := Capabilities(&syncTarget{})
	if !reflect.DeepEqual(got, []string{"read", "write"}) {
		t.Fatalf("unexpected capabilities %v", got)
	}
}

func TestCapabilitiesDeepChain(t *testing.T) {
	got := Capabilities(&bucketBlock{})
	if !reflect.DeepEqual(got, []string{"replication", "versioning"}) {
		t.Fatalf("unexpected capabilities %v", got)
	}
}

func TestCapabilitiesDeduplicate(t *testing.T) {
	got := Capabilities(&auditedStore{})
	if !reflect.DeepEqual(got, []string{"audit", "read"}) {
		t.Fatalf("unexpected capabilities %v", got)
	}
}

func TestCapabilitiesEmpty(t *testing.T) {
	got := Capabilities(&plainNote{})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty set, got %#v", got)
	}
}

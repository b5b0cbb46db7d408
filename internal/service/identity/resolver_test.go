package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	models "sharecast/internal/domain/models/identity"
)

type resolverFixture struct {
	sharers   *fakeSharerRepo
	executors *fakeExecutorRepo
	bypass    *fakeBypassReader
	gate      *fakeGate
	resolver  *partitionResolver
}

func newResolverFixture() *resolverFixture {
	sharers := newFakeSharerRepo()
	executors := newFakeExecutorRepo()
	bypass := newFakeBypassReader()
	gate := newFakeGate()
	resolver := NewPartitionResolver(sharers, executors, bypass, gate, testLogger()).(*partitionResolver)
	return &resolverFixture{
		sharers:   sharers,
		executors: executors,
		bypass:    bypass,
		gate:      gate,
		resolver:  resolver,
	}
}

func TestPartitionResolver_EmptyPrincipal(t *testing.T) {
	f := newResolverFixture()

	partition, found := f.resolver.ResolveEffectivePartition(context.Background(), models.Principal{}, "")
	if found || partition != "" {
		t.Errorf("expected no resolution for empty principal, got (%q, %v)", partition, found)
	}
}

func TestPartitionResolver_VerifiedCandidateShortCircuits(t *testing.T) {
	f := newResolverFixture()
	f.gate.allow("p1", "partition-1")

	// Ownership would resolve a different partition; the verified candidate
	// must win without consulting any provider.
	f.sharers.byOwner["p1"] = &models.SharerProfile{PartitionID: "partition-2", OwnerPrincipalID: "p1"}

	principal := models.Principal{ID: "p1", Email: "p1@example.com"}
	partition, found := f.resolver.ResolveEffectivePartition(context.Background(), principal, "partition-1")
	if !found || partition != "partition-1" {
		t.Fatalf("expected candidate partition-1, got (%q, %v)", partition, found)
	}
	if f.sharers.getCalls != 0 {
		t.Errorf("expected no provider lookups after verified candidate, got %d", f.sharers.getCalls)
	}
}

func TestPartitionResolver_UnverifiedCandidateFallsThrough(t *testing.T) {
	f := newResolverFixture()
	f.sharers.byOwner["p1"] = &models.SharerProfile{PartitionID: "partition-2", OwnerPrincipalID: "p1"}

	// Candidate fails the gate, so the cascade resolves ownership instead.
	principal := models.Principal{ID: "p1", Email: "p1@example.com"}
	partition, found := f.resolver.ResolveEffectivePartition(context.Background(), principal, "partition-9")
	if !found || partition != "partition-2" {
		t.Errorf("expected owned partition-2, got (%q, %v)", partition, found)
	}
}

func TestPartitionResolver_OwnershipStopsCascade(t *testing.T) {
	f := newResolverFixture()
	f.sharers.byOwner["p1"] = &models.SharerProfile{PartitionID: "partition-1", OwnerPrincipalID: "p1"}
	f.executors.links["p1"] = []models.ExecutorLink{{PrincipalID: "p1", PartitionID: "partition-2"}}

	principal := models.Principal{ID: "p1", Email: "p1@example.com"}
	partition, found := f.resolver.ResolveEffectivePartition(context.Background(), principal, "")
	if !found || partition != "partition-1" {
		t.Fatalf("expected owned partition-1, got (%q, %v)", partition, found)
	}
	if f.executors.listCalls != 0 {
		t.Errorf("expected delegation provider to be skipped, got %d calls", f.executors.listCalls)
	}
	if f.bypass.sharerCalls != 0 {
		t.Errorf("expected bypass provider to be skipped, got %d calls", f.bypass.sharerCalls)
	}
}

func TestPartitionResolver_DelegationPicksFirstLink(t *testing.T) {
	f := newResolverFixture()

	// The repository contract orders most recently granted first, ties by
	// partition id ascending; the fake returns insertion order.
	now := time.Now()
	f.executors.links["p1"] = []models.ExecutorLink{
		{PrincipalID: "p1", PartitionID: "partition-b", GrantedAt: now},
		{PrincipalID: "p1", PartitionID: "partition-a", GrantedAt: now.Add(-time.Hour)},
	}

	principal := models.Principal{ID: "p1", Email: "p1@example.com"}
	partition, found := f.resolver.ResolveEffectivePartition(context.Background(), principal, "")
	if !found || partition != "partition-b" {
		t.Errorf("expected most recently granted partition-b, got (%q, %v)", partition, found)
	}
}

func TestPartitionResolver_BypassAfterStandardPathFailure(t *testing.T) {
	f := newResolverFixture()
	storeErr := errors.New("standard path down")
	f.sharers.err = storeErr
	f.executors.err = storeErr
	f.bypass.sharerProfiles["p1"] = &models.SharerProfile{PartitionID: "partition-1", OwnerPrincipalID: "p1"}

	principal := models.Principal{ID: "p1", Email: "p1@example.com"}
	partition, found := f.resolver.ResolveEffectivePartition(context.Background(), principal, "")
	if !found || partition != "partition-1" {
		t.Errorf("expected bypass to resolve partition-1, got (%q, %v)", partition, found)
	}
}

func TestPartitionResolver_BypassDelegation(t *testing.T) {
	f := newResolverFixture()
	f.sharers.err = errors.New("standard path down")
	f.executors.err = errors.New("standard path down")
	f.bypass.executorLinks["p1"] = []models.ExecutorLink{
		{PrincipalID: "p1", PartitionID: "partition-3"},
	}

	principal := models.Principal{ID: "p1", Email: "p1@example.com"}
	partition, found := f.resolver.ResolveEffectivePartition(context.Background(), principal, "")
	if !found || partition != "partition-3" {
		t.Errorf("expected bypass delegation partition-3, got (%q, %v)", partition, found)
	}
}

func TestPartitionResolver_NoAuthorityAnywhere(t *testing.T) {
	f := newResolverFixture()

	principal := models.Principal{ID: "p1", Email: "p1@example.com"}
	partition, found := f.resolver.ResolveEffectivePartition(context.Background(), principal, "")
	if found || partition != "" {
		t.Errorf("expected no resolution, got (%q, %v)", partition, found)
	}
}

func TestPartitionResolver_EveryProviderFailing(t *testing.T) {
	f := newResolverFixture()
	storeErr := errors.New("everything down")
	f.sharers.err = storeErr
	f.executors.err = storeErr
	f.bypass.sharerErr = storeErr
	f.bypass.executorErr = storeErr

	principal := models.Principal{ID: "p1", Email: "p1@example.com"}
	_, found := f.resolver.ResolveEffectivePartition(context.Background(), principal, "")
	if found {
		t.Error("expected no resolution when every provider fails")
	}
}

func TestPartitionResolver_StaleHintDoesNotOverrideResolution(t *testing.T) {
	f := newResolverFixture()
	f.sharers.byOwner["p1"] = &models.SharerProfile{PartitionID: "partition-1", OwnerPrincipalID: "p1"}

	principal := models.Principal{
		ID:    "p1",
		Email: "p1@example.com",
		Hint:  &models.ClaimsHint{SharerPartitionID: "partition-stale"},
	}
	partition, found := f.resolver.ResolveEffectivePartition(context.Background(), principal, "")
	if !found || partition != "partition-1" {
		t.Errorf("expected resolved partition-1 despite stale hint, got (%q, %v)", partition, found)
	}
}

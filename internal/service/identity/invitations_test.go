package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
	identitySvc "sharecast/internal/domain/services/identity"
)

type invitationServiceFixture struct {
	invitations *fakeInvitationRepo
	gate        *fakeGate
	service     *invitationService
	now         time.Time
}

func newInvitationServiceFixture() *invitationServiceFixture {
	f := &invitationServiceFixture{
		invitations: newFakeInvitationRepo(),
		gate:        newFakeGate(),
		now:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	s := NewInvitationService(f.invitations, f.gate, testLogger()).(*invitationService)
	s.now = func() time.Time { return f.now }
	f.service = s
	return f
}

var owner = models.Principal{ID: "owner-1", Email: "owner@example.com"}

func TestCreateInvitation(t *testing.T) {
	f := newInvitationServiceFixture()
	f.gate.allow("owner-1", "partition-1")

	inv, err := f.service.CreateInvitation(context.Background(), owner, &identitySvc.CreateInvitationRequest{
		PartitionID:  "partition-1",
		InviteeEmail: "Invitee@Example.COM",
		Role:         models.RoleExecutor,
	})
	if err != nil {
		t.Fatalf("CreateInvitation failed: %v", err)
	}

	if inv.ID == "" || inv.Token == "" {
		t.Error("expected generated id and token")
	}
	if inv.InviteeEmail != "invitee@example.com" {
		t.Errorf("invitee email = %q, want normalized lowercase", inv.InviteeEmail)
	}
	if inv.Status != models.InvitationPending {
		t.Errorf("status = %q, want pending", inv.Status)
	}
	if want := f.now.Add(invitationTTL); !inv.ExpiresAt.Equal(want) {
		t.Errorf("expires at = %v, want %v", inv.ExpiresAt, want)
	}
	if _, ok := f.invitations.invitations[inv.ID]; !ok {
		t.Error("expected invitation to be persisted")
	}
}

func TestCreateInvitation_Validation(t *testing.T) {
	f := newInvitationServiceFixture()
	f.gate.allow("owner-1", "partition-1")

	tests := []struct {
		name string
		req  *identitySvc.CreateInvitationRequest
	}{
		{"missing partition", &identitySvc.CreateInvitationRequest{InviteeEmail: "a@b.com", Role: models.RoleListener}},
		{"missing email", &identitySvc.CreateInvitationRequest{PartitionID: "partition-1", Role: models.RoleListener}},
		{"malformed email", &identitySvc.CreateInvitationRequest{PartitionID: "partition-1", InviteeEmail: "not-an-email", Role: models.RoleListener}},
		{"missing role", &identitySvc.CreateInvitationRequest{PartitionID: "partition-1", InviteeEmail: "a@b.com"}},
		{"sharer role not invitable", &identitySvc.CreateInvitationRequest{PartitionID: "partition-1", InviteeEmail: "a@b.com", Role: models.RoleSharer}},
		{"admin role not invitable", &identitySvc.CreateInvitationRequest{PartitionID: "partition-1", InviteeEmail: "a@b.com", Role: models.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateInvitation(context.Background(), owner, tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateInvitation_RequiresPartitionControl(t *testing.T) {
	f := newInvitationServiceFixture()

	_, err := f.service.CreateInvitation(context.Background(), owner, &identitySvc.CreateInvitationRequest{
		PartitionID:  "partition-1",
		InviteeEmail: "a@b.com",
		Role:         models.RoleListener,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected forbidden error, got %v", err)
	}
	if len(f.invitations.invitations) != 0 {
		t.Error("expected no invitation to be persisted")
	}
}

func TestGetInvitation(t *testing.T) {
	f := newInvitationServiceFixture()
	f.invitations.add(&models.Invitation{
		ID:     "inv-1",
		Token:  "token-1",
		Status: models.InvitationPending,
	})

	tests := []struct {
		name    string
		id      string
		token   string
		wantErr bool
	}{
		{"matching token", "inv-1", "token-1", false},
		{"wrong token reads as not found", "inv-1", "token-2", true},
		{"missing token", "inv-1", "", true},
		{"missing id", "", "token-1", true},
		{"unknown invitation", "inv-9", "token-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := f.service.GetInvitation(context.Background(), tt.id, tt.token)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrNotFound) {
					t.Errorf("expected not-found error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetInvitation failed: %v", err)
			}
			if inv.ID != tt.id {
				t.Errorf("invitation id = %q, want %q", inv.ID, tt.id)
			}
		})
	}
}

func TestRevokeInvitation(t *testing.T) {
	f := newInvitationServiceFixture()
	f.gate.allow("owner-1", "partition-1")
	f.invitations.add(&models.Invitation{
		ID:          "inv-1",
		Token:       "token-1",
		PartitionID: "partition-1",
		Status:      models.InvitationPending,
	})

	if err := f.service.RevokeInvitation(context.Background(), owner, "inv-1"); err != nil {
		t.Fatalf("RevokeInvitation failed: %v", err)
	}
	if got := f.invitations.invitations["inv-1"].Status; got != models.InvitationRevoked {
		t.Errorf("status = %q, want revoked", got)
	}
}

func TestRevokeInvitation_RequiresPartitionControl(t *testing.T) {
	f := newInvitationServiceFixture()
	f.invitations.add(&models.Invitation{
		ID:          "inv-1",
		PartitionID: "partition-1",
		Status:      models.InvitationPending,
	})

	stranger := models.Principal{ID: "stranger-1", Email: "stranger@example.com"}
	err := f.service.RevokeInvitation(context.Background(), stranger, "inv-1")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected forbidden error, got %v", err)
	}
	if got := f.invitations.invitations["inv-1"].Status; got != models.InvitationPending {
		t.Errorf("status = %q, want pending", got)
	}
}

func TestRevokeInvitation_NotPending(t *testing.T) {
	f := newInvitationServiceFixture()
	f.gate.allow("owner-1", "partition-1")
	f.invitations.add(&models.Invitation{
		ID:          "inv-1",
		PartitionID: "partition-1",
		Status:      models.InvitationAccepted,
	})

	// The guarded transition refuses to revoke a consumed invitation.
	err := f.service.RevokeInvitation(context.Background(), owner, "inv-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not-found from guarded transition, got %v", err)
	}
	if got := f.invitations.invitations["inv-1"].Status; got != models.InvitationAccepted {
		t.Errorf("status = %q, want accepted", got)
	}
}

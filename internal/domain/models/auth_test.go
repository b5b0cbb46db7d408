package models

import (
	"reflect"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"sharecast/internal/domain/models/identity"
)

func TestSessionClaims_Principal(t *testing.T) {
	tests := []struct {
		name     string
		claims   SessionClaims
		wantHint *identity.ClaimsHint
	}{
		{
			name: "no app metadata yields nil hint",
			claims: SessionClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "p1"},
				Email:            "p1@example.com",
			},
			wantHint: nil,
		},
		{
			name: "full snapshot",
			claims: SessionClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "p1"},
				Email:            "p1@example.com",
				AppMetadata: map[string]interface{}{
					"roles":               []interface{}{"sharer", "listener"},
					"sharer_partition_id": "partition-1",
					"delegation_count":    float64(2),
				},
			},
			wantHint: &identity.ClaimsHint{
				Roles:             []identity.Role{identity.RoleSharer, identity.RoleListener},
				SharerPartitionID: "partition-1",
				DelegationCount:   2,
			},
		},
		{
			name: "unknown roles are skipped",
			claims: SessionClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "p1"},
				AppMetadata: map[string]interface{}{
					"roles": []interface{}{"superuser", "listener", 42},
				},
			},
			wantHint: &identity.ClaimsHint{
				Roles: []identity.Role{identity.RoleListener},
			},
		},
		{
			name: "metadata without role facts yields nil hint",
			claims: SessionClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "p1"},
				AppMetadata: map[string]interface{}{
					"provider": "email",
				},
			},
			wantHint: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := tt.claims.Principal()
			if principal.ID != tt.claims.Subject {
				t.Errorf("principal id = %q, want %q", principal.ID, tt.claims.Subject)
			}
			if principal.Email != tt.claims.Email {
				t.Errorf("principal email = %q, want %q", principal.Email, tt.claims.Email)
			}
			if !reflect.DeepEqual(principal.Hint, tt.wantHint) {
				t.Errorf("hint = %+v, want %+v", principal.Hint, tt.wantHint)
			}
		})
	}
}

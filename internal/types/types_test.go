package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantOK   bool
	}{
		{"valid pair", "user@example.com", "secret1", true},
		{"minimum length password", "user@example.com", "123456", true},
		{"empty email", "", "secret1", false},
		{"email without at sign", "userexample.com", "secret1", false},
		{"empty password", "user@example.com", "", false},
		{"short password", "user@example.com", "12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := ValidateCredentials(tt.email, tt.password)
			if tt.wantOK {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
	assert.Equal(t, "tipster@demo.com", NormalizeEmail("TIPSTER@DEMO.COM"))
}

func TestEmailLocalPart(t *testing.T) {
	assert.Equal(t, "alice", EmailLocalPart("alice@example.com"))
	assert.Equal(t, "no-at-sign", EmailLocalPart("no-at-sign"))
}

func TestNotificationTypeValid(t *testing.T) {
	for _, typ := range []NotificationType{
		NotificationTokenPurchase,
		NotificationTipGeneration,
		NotificationTipsterResults,
		NotificationTipAssigned,
	} {
		assert.True(t, typ.Valid(), "expected %s to be valid", typ)
	}

	assert.False(t, NotificationType("surprise").Valid())
	assert.False(t, NotificationType("").Valid())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleTipster.Valid())
	assert.False(t, Role("admin").Valid())
}

func TestTipStatusValid(t *testing.T) {
	assert.True(t, TipStatusPending.Valid())
	assert.True(t, TipStatusCompleted.Valid())
	assert.False(t, TipStatus("archived").Valid())
}

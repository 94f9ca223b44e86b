package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegistration(t *testing.T) {
	lengthMsg := userIDRules[0].message
	charsetMsg := userIDRules[1].message
	passwordMsg := passwordRules[0].message

	tests := []struct {
		name     string
		userID   string
		password string
		want     []string
	}{
		{"valid", "alice_01", "s3cret", nil},
		{"boundaries", "abc", "12345", nil},
		{"upper boundaries", strings.Repeat("a", 100), strings.Repeat("p", 50), nil},
		{"both too short", "ab", "1234", []string{lengthMsg, passwordMsg}},
		{"user id too long", strings.Repeat("a", 101), "s3cret", []string{lengthMsg}},
		{"password too long", "alice", strings.Repeat("p", 51), []string{passwordMsg}},
		{"bad charset", "alice-01", "s3cret", []string{charsetMsg}},
		{"short and bad charset", "a!", "s3cret", []string{lengthMsg, charsetMsg}},
		{"multibyte", "ユーザー", "s3cret", []string{charsetMsg}},
		{"empty", "", "", []string{lengthMsg, passwordMsg}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateRegistration(tt.userID, tt.password))
		})
	}
}

func TestNewValidatorRegistersUserIDTag(t *testing.T) {
	v := newValidator()
	assert.NotPanics(t, func() { _ = v.Var("alice_01", "userid") })
	assert.NoError(t, v.Var("alice_01", "userid"))
	assert.Error(t, v.Var("alice-01", "userid"))
}

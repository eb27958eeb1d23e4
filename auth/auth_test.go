package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	hasher := NewHasher(4) // minimal cost to keep the test fast
	password := "correct horse battery staple"

	hash, err := hasher.Hash(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$2a$"))
	req.NotEqual(password, hash)

	req.True(hasher.Compare(password, hash))
	req.False(hasher.Compare("wrong password", hash))
}

func TestHasher_CostClamping(t *testing.T) {
	req := require.New(t)

	// Out-of-range costs fall back to the bcrypt default instead of failing.
	hasher := NewHasher(99)
	hash, err := hasher.Hash("secret")
	req.NoError(err)
	req.True(hasher.Compare("secret", hash))
}

func TestHasher_CompareDummy(t *testing.T) {
	req := require.New(t)
	hasher := NewHasher(4)

	// The dummy comparison always fails; it only exists to burn the same
	// amount of work as a real comparison.
	req.False(hasher.CompareDummy("anything"))
	req.False(hasher.CompareDummy(""))
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	valid := RegisterRequest{
		Username:  "alice",
		Password:  "secret123",
		FirstName: "Alice",
		LastName:  "Liddell",
		Phone:     "+15555550100",
	}

	tests := []struct {
		name    string
		mutate  func(r *RegisterRequest)
		wantErr bool
	}{
		{"Valid request", func(r *RegisterRequest) {}, false},
		{"Missing username", func(r *RegisterRequest) { r.Username = "" }, true},
		{"Missing password", func(r *RegisterRequest) { r.Password = "" }, true},
		{"Password too short", func(r *RegisterRequest) { r.Password = "abc" }, true},
		{"Password too long", func(r *RegisterRequest) { r.Password = strings.Repeat("a", 73) }, true},
		{"Missing first name", func(r *RegisterRequest) { r.FirstName = "" }, true},
		{"Missing last name", func(r *RegisterRequest) { r.LastName = "" }, true},
		{"Missing phone", func(r *RegisterRequest) { r.Phone = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := ValidateRegister(r)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestSendValidation(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateSend(SendRequest{ToUsername: "bob", Body: "hi"}))
	req.NoError(ValidateSend(SendRequest{FromUsername: "alice", ToUsername: "bob", Body: "hi"}))
	req.Error(ValidateSend(SendRequest{ToUsername: "", Body: "hi"}))
	req.Error(ValidateSend(SendRequest{ToUsername: "bob", Body: ""}))
}

func BenchmarkHashPassword(b *testing.B) {
	hasher := NewHasher(10)
	for i := 0; i < b.N; i++ {
		_, _ = hasher.Hash("a-long-enough-password-for-bench")
	}
}

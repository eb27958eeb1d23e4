package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher turns plaintext passwords into bcrypt hashes with a configurable
// work factor. The cost is process-wide configuration; a Hasher is immutable
// after construction.
type Hasher struct {
	cost int
	// dummy is a hash compared against when the username does not exist,
	// so an unknown user costs the same as a wrong password.
	dummy []byte
}

func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("messagely-dummy-credential"), cost)
	if err != nil {
		// bcrypt only fails here on an out-of-range cost, which the clamp
		// above rules out.
		panic(err)
	}
	return Hasher{cost: cost, dummy: dummy}
}

// Hash generates a bcrypt hash from a plaintext password.
func (h Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare checks a plaintext password against a stored hash.
func (h Hasher) Compare(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}

// CompareDummy burns a full bcrypt comparison against the precomputed dummy
// hash. Always returns false.
func (h Hasher) CompareDummy(password string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
	return false
}

package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	errCompare := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return errCompare == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// DummyCompare burns one bcrypt comparison against a fixed hash so that
// unknown-user paths cost the same as a wrong password.
func DummyCompare(password string) {
	dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)
		if err != nil {
			return
		}
		dummyHash = hash
	})
	if len(dummyHash) == 0 {
		return
	}
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

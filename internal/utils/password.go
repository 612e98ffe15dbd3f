package utils

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when the account does not exist so that
// login spends the same bcrypt time for unknown emails and wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("cinema-booking-dummy"), bcrypt.DefaultCost)

// HashPassword returns a bcrypt hash using the given cost.  Out-of-range
// costs fall back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.  An empty
// hash is checked against a dummy hash and always fails.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

package password

import "golang.org/x/crypto/bcrypt"

// Cost is the bcrypt work factor for newly issued hashes. Raising it does not
// invalidate old hashes: Verify uses the cost embedded in each stored hash.
const Cost = 12

// Hash derives a bcrypt hash from the plaintext password.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plain matches the stored bcrypt hash.
// Any mismatch or malformed input yields false, never a panic.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

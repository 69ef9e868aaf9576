package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost applies to every stored credential; raising it only affects
// hashes created after the change.
const bcryptCost = 12

// HashPassword derives the bcrypt hash stored on the user row.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

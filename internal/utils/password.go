package utils

import (
    "errors" // errors reports short passwords

    "golang.org/x/crypto/bcrypt" // bcrypt hashes admin passwords
)

// MinPasswordLength is enforced by HashPassword so a trivially short admin
// password never reaches ADMIN_PASSWORD_HASH.
const MinPasswordLength = 8

// HashPassword returns bcrypt hash using the given cost.  A cost of zero
// selects bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
    if len(plain) < MinPasswordLength {
        return "", errors.New("password too short")
    }
    if cost == 0 {
        cost = bcrypt.DefaultCost
    }
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
    if hash == "" {
        return false
    }
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"clinic-app-server/internal/config"
)

// Verify checks the provided clinic credentials against the configured
// ones. It is a pure function of its inputs: configuration is injected
// rather than read from global state. When a bcrypt PIN hash is
// configured it takes precedence over the plain PIN; otherwise both
// values are compared in constant time.
func Verify(mobile, pin string, creds config.ClinicConfig) bool {
	if creds.Mobile == "" {
		return false
	}
	mobileOK := subtle.ConstantTimeCompare([]byte(mobile), []byte(creds.Mobile)) == 1

	if creds.PinHash != "" {
		return mobileOK && bcrypt.CompareHashAndPassword([]byte(creds.PinHash), []byte(pin)) == nil
	}
	if creds.Pin == "" {
		return false
	}
	return mobileOK && subtle.ConstantTimeCompare([]byte(pin), []byte(creds.Pin)) == 1
}

// HashPin produces a bcrypt hash suitable for CLINIC_PIN_HASH.
func HashPin(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

package security

import "fmt"

const (
	// PermissionKeyLength is the length of mechanic admission keys.
	PermissionKeyLength = 50

	otpDigits = "0123456789"

	permissionKeyCharset = "0123456789" +
		"abcdefghijklmnopqrstuvwxyz" +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"@#$%"
)

// GenerateOTP returns a numeric one-time code of the given length. The first
// digit may be zero, so codes are compared as strings.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("otp length must be positive")
	}
	return randomString(otpDigits, length)
}

// GeneratePermissionKey returns a random admission key for mechanic signups.
func GeneratePermissionKey() (string, error) {
	return randomString(permissionKeyCharset, PermissionKeyLength)
}

func randomString(charset string, length int) (string, error) {
	out := make([]byte, length)
	for i := range out {
		idx, err := randIndex(len(charset))
		if err != nil {
			return "", err
		}
		out[i] = charset[idx]
	}
	return string(out), nil
}

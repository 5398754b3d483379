package directory

import (
	"fmt"
	"strings"
)

const (
	FriendCodeLength   = 6
	friendCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NormalizeFriendCode trims surrounding whitespace and upper-cases the code.
func NormalizeFriendCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidFriendCode reports whether code has the shape of a normalized friend code.
func ValidFriendCode(code string) bool {
	if len(code) != FriendCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(friendCodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}

// generateFriendCode draws codes until one is unused. The number of draws is bounded so a
// nearly full code space (36^6) fails instead of spinning. Caller holds s.mu.
func (s *Store) generateFriendCode() (string, error) {
	buf := make([]byte, FriendCodeLength)
	for attempt := 0; attempt < s.maxCodeAttempt; attempt++ {
		for i := range buf {
			n, err := s.randomInt(int64(len(friendCodeAlphabet)))
			if err != nil {
				return "", fmt.Errorf("failed to draw friend code: %w", err)
			}
			buf[i] = friendCodeAlphabet[n]
		}
		code := string(buf)
		if _, taken := s.codeIndex[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

package random

import (
	"testing"
)

func TestRandAlphabetAndNumberString(t *testing.T) {
	t.Parallel()

	set := make(map[string]bool, 1000)
	for range 1000 {
		s := AlphaNumeric(10)
		if set[s] {
			t.FailNow()
		}
		set[s] = true
	}
}

func TestSecureRandAlphabetAndNumberString(t *testing.T) {
	t.Parallel()

	set := make(map[string]bool, 1000)
	for range 1000 {
		s := SecureAlphaNumeric(10)
		if set[s] {
			t.FailNow()
		}
		set[s] = true
	}
}

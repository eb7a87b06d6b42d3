/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

import (
	"strings"
	"testing"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[byte]bool)

	for range 500 {
		code := GenerateCode()
		if len(code) != CodeLength {
			t.Fatalf("expected %d characters, got %q", CodeLength, code)
		}
		for i := 0; i < len(code); i++ {
			if !strings.ContainsRune(CodeChars, rune(code[i])) {
				t.Fatalf("unexpected character %q in %q", code[i], code)
			}
			seen[code[i]] = true
		}
	}

	// 2000 draws over 36 symbols should reach both letters and digits.
	if len(seen) < 30 {
		t.Errorf("expected a broad spread of characters, saw %d", len(seen))
	}
}

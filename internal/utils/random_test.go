package utils

import (
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestGenerateReferenceSuffix(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for i := 0; i < 200; i++ {
		if s := GenerateReferenceSuffix(); !re.MatchString(s) {
			t.Fatalf("unexpected suffix %q", s)
		}
	}
}

func TestRomanizeChineseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "王伟", want: "Wang Wei"},
		{in: "李明华", want: "Li Minghua"},
		{in: "张", want: "Zhang"},
	}
	for _, tt := range tests {
		if got := RomanizeChineseName(tt.in); got != tt.want {
			t.Errorf("RomanizeChineseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateEmailFromChineseName(t *testing.T) {
	email := GenerateEmailFromChineseName("陈静", "example.com")
	if !strings.HasPrefix(email, "chen.jing") || !strings.HasSuffix(email, "@example.com") {
		t.Fatalf("unexpected email %q", email)
	}
}

func TestGenerateRandomChineseName(t *testing.T) {
	for i := 0; i < 50; i++ {
		n := utf8.RuneCountInString(GenerateRandomChineseName())
		if n < 2 || n > 3 {
			t.Fatalf("unexpected name length %d", n)
		}
	}
}

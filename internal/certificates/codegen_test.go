package certificates

import (
	"strings"
	"testing"
	"time"
)

func TestNewCodeGeneratorRejectsShortLength(t *testing.T) {
	if _, err := NewCodeGenerator(4); err == nil {
		t.Fatal("expected error for short code length")
	}
}

func TestVerificationCodeShape(t *testing.T) {
	gen, err := NewCodeGenerator(10)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := gen.VerificationCode()
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if len(code) != 10 {
			t.Fatalf("expected 10 characters, got %d (%s)", len(code), code)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %s contains %q outside the alphabet", code, r)
			}
		}
		if strings.ContainsAny(code, "0O1I") {
			t.Fatalf("code %s contains an ambiguous character", code)
		}
		seen[code] = struct{}{}
	}
	if len(seen) != 200 {
		t.Fatalf("expected 200 distinct codes, got %d", len(seen))
	}
}

func TestCertificateNumberFormat(t *testing.T) {
	gen, err := NewCodeGenerator(10)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	issuedAt := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	number, err := gen.CertificateNumber("go201", issuedAt)
	if err != nil {
		t.Fatalf("generate number: %v", err)
	}

	if !strings.HasPrefix(number, "CERT-GO201-2026-") {
		t.Fatalf("unexpected number shape %q", number)
	}
	suffix := strings.TrimPrefix(number, "CERT-GO201-2026-")
	if len(suffix) != numberSuffixLength {
		t.Fatalf("expected %d-character suffix, got %q", numberSuffixLength, suffix)
	}
	for _, r := range suffix {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("suffix %q contains %q outside the alphabet", suffix, r)
		}
	}
}

func TestCertificateNumberRequiresCourseCode(t *testing.T) {
	gen, err := NewCodeGenerator(10)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if _, err := gen.CertificateNumber("  ", time.Now()); err == nil {
		t.Fatal("expected error for blank course code")
	}
}

package certificates

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// codeAlphabet deliberately omits 0/O and 1/I so codes read unambiguously
// when printed on a certificate. Exactly 32 characters, which keeps byte
// sampling unbiased.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const numberSuffixLength = 6

// CodeGenerator produces verification codes and certificate numbers. It has
// no persistence side effects; uniqueness is enforced by database constraints
// and retried by the caller.
type CodeGenerator struct {
	codeLength int
}

// NewCodeGenerator builds a generator producing verification codes of the
// given length.
func NewCodeGenerator(codeLength int) (*CodeGenerator, error) {
	if codeLength < 8 {
		return nil, fmt.Errorf("code length must be at least 8, got %d", codeLength)
	}
	return &CodeGenerator{codeLength: codeLength}, nil
}

// VerificationCode returns a fresh random code drawn from the unambiguous
// alphabet, already in the normalized upper-case form codes are stored in.
func (g *CodeGenerator) VerificationCode() (string, error) {
	return randomToken(g.codeLength)
}

// CertificateNumber returns a human-readable number of the form
// CERT-{COURSE}-{YEAR}-{SUFFIX}.
func (g *CodeGenerator) CertificateNumber(courseCode string, issuedAt time.Time) (string, error) {
	course := strings.ToUpper(strings.TrimSpace(courseCode))
	if course == "" {
		return "", fmt.Errorf("course code required")
	}
	suffix, err := randomToken(numberSuffixLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CERT-%s-%d-%s", course, issuedAt.UTC().Year(), suffix), nil
}

func randomToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	var sb strings.Builder
	sb.Grow(length)
	for _, b := range buf {
		sb.WriteByte(codeAlphabet[int(b)%len(codeAlphabet)])
	}
	return sb.String(), nil
}

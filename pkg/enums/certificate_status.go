package enums

import "fmt"

// CertificateStatus maps to the certificate_status enum in Postgres.
type CertificateStatus string

const (
	CertificateStatusActive  CertificateStatus = "active"
	CertificateStatusRevoked CertificateStatus = "revoked"
)

var validCertificateStatuses = []CertificateStatus{
	CertificateStatusActive,
	CertificateStatusRevoked,
}

// String implements fmt.Stringer.
func (c CertificateStatus) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical certificate_status enum.
func (c CertificateStatus) IsValid() bool {
	for _, candidate := range validCertificateStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCertificateStatus converts raw input into CertificateStatus.
func ParseCertificateStatus(value string) (CertificateStatus, error) {
	for _, candidate := range validCertificateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid certificate status %q", value)
}

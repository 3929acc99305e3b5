package service

import "context"

// CertificateTextRequest describes the certificate of appreciation to write.
type CertificateTextRequest struct {
	IssuerName    string
	RecipientName string
	ProjectTitle  string
	DurationHours int
	Skills        []string
	Locale        string
}

// CertificateTextGenerator returns the prose printed on a volunteer's
// certificate. Implementations do not retry.
type CertificateTextGenerator interface {
	GenerateCertificateText(ctx context.Context, req CertificateTextRequest) (string, error)
}

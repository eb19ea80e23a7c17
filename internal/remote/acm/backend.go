// Package acm implements remote.Backend on AWS Certificate Manager.
//
// Entries are addressed by certificate ARN. Get describes the certificate
// and exports it with a passphrase; the exported key is an encrypted
// PKCS#8 block that the remote source unlocks with the same passphrase.
// The certificate serial, in decimal, is used as the version marker.
package acm

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	awsacm "github.com/aws/aws-sdk-go/service/acm"
	"github.com/aws/aws-sdk-go/service/acm/acmiface"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/remote"
)

// listPageSize is the ListCertificates page size.
const listPageSize = 100

// Config configures the backend.
type Config struct {
	// Region is the AWS region. Empty uses the SDK's resolution chain.
	Region string

	// Endpoint overrides the service endpoint (e.g. a localstack URL).
	Endpoint string

	// ExportPassphrase protects exported keys in transit. Empty
	// generates a fresh passphrase for every export.
	ExportPassphrase string

	Logger *slog.Logger
}

// Backend is a remote.Backend backed by ACM.
type Backend struct {
	client     acmiface.ACMAPI
	passphrase string
	logger     *slog.Logger
}

var _ remote.Backend = (*Backend)(nil)

// New creates a backend with a fresh SDK session.
func New(cfg Config) (*Backend, error) {
	awsCfg := aws.Config{}
	if cfg.Region != "" {
		awsCfg.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("acm: create session: %w", err)
	}
	return NewWithClient(awsacm.New(sess), cfg.ExportPassphrase, cfg.Logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client acmiface.ACMAPI, exportPassphrase string, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		client:     client,
		passphrase: exportPassphrase,
		logger:     logger.With("component", "remote", "backend", "acm"),
	}
}

// List returns every certificate of any key type, following pagination.
// Summaries are named by ARN; the domain name goes into Description.
func (b *Backend) List(ctx context.Context, includeTags bool) ([]domain.Summary, error) {
	input := &awsacm.ListCertificatesInput{
		MaxItems: aws.Int64(listPageSize),
		Includes: &awsacm.Filters{KeyTypes: aws.StringSlice(awsacm.KeyAlgorithm_Values())},
	}

	var out []domain.Summary
	err := b.client.ListCertificatesPagesWithContext(ctx, input, func(page *awsacm.ListCertificatesOutput, _ bool) bool {
		for _, c := range page.CertificateSummaryList {
			arn := aws.StringValue(c.CertificateArn)
			out = append(out, domain.Summary{
				Name:        arn,
				ID:          arn,
				Description: aws.StringValue(c.DomainName),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("acm: list certificates: %w", err)
	}

	if includeTags {
		for i := range out {
			tags, err := b.tags(ctx, out[i].ID)
			if err != nil {
				return nil, err
			}
			out[i].Tags = tags
		}
	}
	return out, nil
}

// Get describes and exports the certificate with the given ARN.
//
// The entry name is left empty so the local identifier derives from the
// domain name, then the first SAN, then the ARN.
func (b *Backend) Get(ctx context.Context, arn string) (*remote.Entry, error) {
	described, err := b.client.DescribeCertificateWithContext(ctx, &awsacm.DescribeCertificateInput{
		CertificateArn: aws.String(arn),
	})
	if err != nil {
		return nil, classify(arn, "describe", err)
	}
	detail := described.Certificate
	if detail == nil {
		return nil, domain.ErrRemoteNotFound.WithDetails(arn)
	}

	passphrase, err := b.exportPassphrase()
	if err != nil {
		return nil, err
	}
	exported, err := b.client.ExportCertificateWithContext(ctx, &awsacm.ExportCertificateInput{
		CertificateArn: aws.String(arn),
		Passphrase:     []byte(passphrase),
	})
	if err != nil {
		return nil, classify(arn, "export", err)
	}

	entry := &remote.Entry{
		ID:               arn,
		Certificate:      aws.StringValue(exported.Certificate),
		PrivateKey:       aws.StringValue(exported.PrivateKey),
		CertificateChain: aws.StringValue(exported.CertificateChain),
		DomainName:       primaryName(detail),
		Passphrase:       passphrase,
		LastChanged:      lastChanged(detail),
	}
	if serial, ok := decimalSerial(aws.StringValue(detail.Serial)); ok {
		entry.VersionMarker = serial
		entry.SerialMarker = true
	}

	tags, err := b.tags(ctx, arn)
	if err != nil {
		b.logger.Warn("list certificate tags failed", "arn", arn, "error", err)
	} else {
		entry.Tags = tags
	}
	return entry, nil
}

func (b *Backend) tags(ctx context.Context, arn string) (map[string]string, error) {
	out, err := b.client.ListTagsForCertificateWithContext(ctx, &awsacm.ListTagsForCertificateInput{
		CertificateArn: aws.String(arn),
	})
	if err != nil {
		return nil, fmt.Errorf("acm: list tags for %s: %w", arn, err)
	}
	if len(out.Tags) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(out.Tags))
	for _, t := range out.Tags {
		m[aws.StringValue(t.Key)] = aws.StringValue(t.Value)
	}
	return m, nil
}

func (b *Backend) exportPassphrase() (string, error) {
	if b.passphrase != "" {
		return b.passphrase, nil
	}
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("acm: generate export passphrase: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func classify(arn, op string, err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case awsacm.ErrCodeResourceNotFoundException:
			return domain.ErrRemoteNotFound.WithDetails(arn)
		case awsacm.ErrCodeInvalidStateException, awsacm.ErrCodeRequestInProgressException:
			return domain.ErrNotExportable.WithDetails(arn).WithCause(err)
		}
	}
	return fmt.Errorf("acm: %s %s: %w", op, arn, err)
}

// primaryName returns the domain name, falling back to the first SAN.
func primaryName(d *awsacm.CertificateDetail) string {
	if name := aws.StringValue(d.DomainName); name != "" {
		return name
	}
	for _, san := range d.SubjectAlternativeNames {
		if name := aws.StringValue(san); name != "" {
			return name
		}
	}
	return ""
}

func lastChanged(d *awsacm.CertificateDetail) time.Time {
	for _, t := range []*time.Time{d.ImportedAt, d.IssuedAt, d.CreatedAt} {
		if t != nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// decimalSerial converts ACM's colon-separated hex serial to the decimal
// form the certificate store records.
func decimalSerial(serial string) (string, bool) {
	digits := strings.ReplaceAll(strings.TrimSpace(serial), ":", "")
	if digits == "" {
		return "", false
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return "", false
	}
	return n.String(), true
}

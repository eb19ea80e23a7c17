package acm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	awsacm "github.com/aws/aws-sdk-go/service/acm"
	"github.com/aws/aws-sdk-go/service/acm/acmiface"

	"github.com/yndnr/certrotate-go/internal/core/domain"
	"github.com/yndnr/certrotate-go/internal/remote"
	"github.com/yndnr/certrotate-go/internal/testutil"
)

const testARN = "arn:aws:acm:us-east-1:123456789012:certificate/0123456789abcdef0123"

type mockACMClient struct {
	acmiface.ACMAPI

	t       *testing.T
	pair    testutil.Pair
	pages   []*awsacm.ListCertificatesOutput
	details map[string]*awsacm.CertificateDetail
	tags    map[string][]*awsacm.Tag

	exportErr   error
	passphrases []string
}

func (m *mockACMClient) ListCertificatesPagesWithContext(_ aws.Context, in *awsacm.ListCertificatesInput, fn func(*awsacm.ListCertificatesOutput, bool) bool, _ ...request.Option) error {
	if in.Includes == nil || len(in.Includes.KeyTypes) == 0 {
		m.t.Error("ListCertificates should include every key type")
	}
	for i, page := range m.pages {
		if !fn(page, i == len(m.pages)-1) {
			break
		}
	}
	return nil
}

func (m *mockACMClient) DescribeCertificateWithContext(_ aws.Context, in *awsacm.DescribeCertificateInput, _ ...request.Option) (*awsacm.DescribeCertificateOutput, error) {
	d, ok := m.details[aws.StringValue(in.CertificateArn)]
	if !ok {
		return nil, awserr.New(awsacm.ErrCodeResourceNotFoundException, "not found", nil)
	}
	return &awsacm.DescribeCertificateOutput{Certificate: d}, nil
}

func (m *mockACMClient) ExportCertificateWithContext(_ aws.Context, in *awsacm.ExportCertificateInput, _ ...request.Option) (*awsacm.ExportCertificateOutput, error) {
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	pass := string(in.Passphrase)
	m.passphrases = append(m.passphrases, pass)
	return &awsacm.ExportCertificateOutput{
		Certificate: aws.String(string(m.pair.CertPEM)),
		PrivateKey:  aws.String(string(testutil.EncryptKeyPKCS8(m.t, m.pair, pass))),
	}, nil
}

func (m *mockACMClient) ListTagsForCertificateWithContext(_ aws.Context, in *awsacm.ListTagsForCertificateInput, _ ...request.Option) (*awsacm.ListTagsForCertificateOutput, error) {
	return &awsacm.ListTagsForCertificateOutput{Tags: m.tags[aws.StringValue(in.CertificateArn)]}, nil
}

func newMock(t *testing.T) *mockACMClient {
	pair := testutil.NewCert(t, testutil.CertOptions{CommonName: "*.example.com", Serial: 111})
	return &mockACMClient{
		t:    t,
		pair: pair,
		details: map[string]*awsacm.CertificateDetail{
			testARN: {
				CertificateArn: aws.String(testARN),
				DomainName:     aws.String("*.example.com"),
				Serial:         aws.String("6f"),
				IssuedAt:       aws.Time(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
			},
		},
		tags: map[string][]*awsacm.Tag{
			testARN: {{Key: aws.String("certrotate"), Value: aws.String("enabled")}},
		},
	}
}

func TestBackend_Get(t *testing.T) {
	client := newMock(t)
	b := NewWithClient(client, "", nil)

	entry, err := b.Get(context.Background(), testARN)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry.Name != "" || entry.ID != testARN {
		t.Errorf("Name, ID = %q, %q, want empty name and the ARN", entry.Name, entry.ID)
	}
	if entry.VersionMarker != "111" || !entry.SerialMarker {
		t.Errorf("marker = %q (serial %v), want decimal serial 111", entry.VersionMarker, entry.SerialMarker)
	}
	if entry.DomainName != "*.example.com" {
		t.Errorf("DomainName = %q", entry.DomainName)
	}
	if len(client.passphrases) != 1 || entry.Passphrase != client.passphrases[0] || entry.Passphrase == "" {
		t.Error("entry should carry the generated export passphrase")
	}
	if entry.Tags["certrotate"] != "enabled" {
		t.Errorf("Tags = %v", entry.Tags)
	}
	if !entry.LastChanged.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LastChanged = %v", entry.LastChanged)
	}
}

func TestBackend_ConfiguredExportPassphrase(t *testing.T) {
	client := newMock(t)
	b := NewWithClient(client, "fleet-pass", nil)

	if _, err := b.Get(context.Background(), testARN); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := b.Get(context.Background(), testARN); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	for _, p := range client.passphrases {
		if p != "fleet-pass" {
			t.Errorf("export passphrase = %q, want fleet-pass", p)
		}
	}
}

func TestBackend_GetErrors(t *testing.T) {
	tests := []struct {
		name      string
		arn       string
		exportErr error
		want      error
	}{
		{"unknown arn", "arn:missing", nil, domain.ErrRemoteNotFound},
		{"invalid state", testARN, awserr.New(awsacm.ErrCodeInvalidStateException, "pending", nil), domain.ErrNotExportable},
		{"in progress", testARN, awserr.New(awsacm.ErrCodeRequestInProgressException, "wait", nil), domain.ErrNotExportable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMock(t)
			client.exportErr = tt.exportErr
			b := NewWithClient(client, "", nil)

			if _, err := b.Get(context.Background(), tt.arn); !errors.Is(err, tt.want) {
				t.Errorf("Get() error = %v, want %v", err, tt.want)
			}
		})
	}

	client := newMock(t)
	client.exportErr = awserr.New("ThrottlingException", "slow down", nil)
	_, err := NewWithClient(client, "", nil).Get(context.Background(), testARN)
	if err == nil || errors.Is(err, domain.ErrRemoteNotFound) || errors.Is(err, domain.ErrNotExportable) {
		t.Errorf("Get() error = %v, want a plain remote failure", err)
	}
}

func TestBackend_List(t *testing.T) {
	client := newMock(t)
	client.pages = []*awsacm.ListCertificatesOutput{
		{CertificateSummaryList: []*awsacm.CertificateSummary{{CertificateArn: aws.String(testARN), DomainName: aws.String("*.example.com")}}},
		{CertificateSummaryList: []*awsacm.CertificateSummary{{CertificateArn: aws.String("arn:other"), DomainName: aws.String("api.example.com")}}},
	}
	b := NewWithClient(client, "", nil)

	got, err := b.List(context.Background(), true)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d summaries across pages, want 2", len(got))
	}
	if got[0].Name != testARN || got[0].Description != "*.example.com" || !got[0].HasTag("certrotate", "enabled") {
		t.Errorf("first summary = %+v", got[0])
	}
	if got[1].Tags != nil {
		t.Errorf("untagged certificate Tags = %v, want nil", got[1].Tags)
	}

	plain, err := b.List(context.Background(), false)
	if err != nil || plain[0].Tags != nil {
		t.Errorf("List(includeTags=false) = %+v, %v, want no tags", plain, err)
	}
}

func TestBackend_SourceUnlocksExport(t *testing.T) {
	client := newMock(t)
	s, err := remote.NewSource(remote.Config{
		Backend:     NewWithClient(client, "", nil),
		SecretNames: []string{testARN},
	})
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	batch, err := s.Monitored(context.Background())
	if err != nil {
		t.Fatalf("Monitored() error = %v", err)
	}
	d, ok := batch.Descriptors["wildcard_example_com"]
	if !ok {
		t.Fatalf("Descriptors = %v, want wildcard_example_com", batch.Descriptors)
	}
	if d.PrivateKeyPEM != string(testutil.PKCS8PEM(t, client.pair)) {
		t.Error("descriptor should carry the decrypted PKCS#8 key")
	}
	if !d.SerialMarker || d.VersionMarker != "111" {
		t.Errorf("marker = %q (serial %v)", d.VersionMarker, d.SerialMarker)
	}
}

func TestPrimaryName(t *testing.T) {
	tests := []struct {
		name   string
		detail *awsacm.CertificateDetail
		want   string
	}{
		{"domain name", &awsacm.CertificateDetail{DomainName: aws.String("a.example.com")}, "a.example.com"},
		{"first san", &awsacm.CertificateDetail{SubjectAlternativeNames: aws.StringSlice([]string{"", "b.example.com"})}, "b.example.com"},
		{"nothing", &awsacm.CertificateDetail{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := primaryName(tt.detail); got != tt.want {
				t.Errorf("primaryName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecimalSerial(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"6f", "111", true},
		{"01:00", "256", true},
		{"0a:1b:2c", "662316", true},
		{"", "", false},
		{"zz", "", false},
	}
	for _, tt := range tests {
		got, ok := decimalSerial(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("decimalSerial(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

package secretsmanager

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	sm "github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"

	"github.com/yndnr/certrotate-go/internal/core/domain"
)

type mockSecretsManagerClient struct {
	secretsmanageriface.SecretsManagerAPI

	pages       []*sm.ListSecretsOutput
	listErr     error
	values      map[string]*sm.GetSecretValueOutput
	describe    map[string]*sm.DescribeSecretOutput
	describeErr error
}

func (m *mockSecretsManagerClient) ListSecretsPagesWithContext(_ aws.Context, _ *sm.ListSecretsInput, fn func(*sm.ListSecretsOutput, bool) bool, _ ...request.Option) error {
	if m.listErr != nil {
		return m.listErr
	}
	for i, page := range m.pages {
		if !fn(page, i == len(m.pages)-1) {
			break
		}
	}
	return nil
}

func (m *mockSecretsManagerClient) GetSecretValueWithContext(_ aws.Context, in *sm.GetSecretValueInput, _ ...request.Option) (*sm.GetSecretValueOutput, error) {
	v, ok := m.values[aws.StringValue(in.SecretId)]
	if !ok {
		return nil, awserr.New(sm.ErrCodeResourceNotFoundException, "Secrets Manager can't find the specified secret.", nil)
	}
	return v, nil
}

func (m *mockSecretsManagerClient) DescribeSecretWithContext(_ aws.Context, in *sm.DescribeSecretInput, _ ...request.Option) (*sm.DescribeSecretOutput, error) {
	if m.describeErr != nil {
		return nil, m.describeErr
	}
	d, ok := m.describe[aws.StringValue(in.SecretId)]
	if !ok {
		return &sm.DescribeSecretOutput{}, nil
	}
	return d, nil
}

func TestBackend_List(t *testing.T) {
	changed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	client := &mockSecretsManagerClient{
		pages: []*sm.ListSecretsOutput{
			{SecretList: []*sm.SecretListEntry{{
				Name:            aws.String("prod/web"),
				ARN:             aws.String("arn:web"),
				LastChangedDate: aws.Time(changed),
				Tags:            []*sm.Tag{{Key: aws.String("certrotate"), Value: aws.String("enabled")}},
			}}},
			{SecretList: []*sm.SecretListEntry{{Name: aws.String("prod/api"), ARN: aws.String("arn:api")}}},
		},
	}
	b := NewWithClient(client, nil)

	got, err := b.List(context.Background(), true)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d summaries across pages, want 2", len(got))
	}
	if got[0].Name != "prod/web" || got[0].ID != "arn:web" || !got[0].LastChanged.Equal(changed) {
		t.Errorf("summary = %+v", got[0])
	}
	if !got[0].HasTag("certrotate", "enabled") {
		t.Error("tags should be populated with includeTags")
	}

	got, _ = b.List(context.Background(), false)
	if got[0].Tags != nil {
		t.Error("tags should be omitted without includeTags")
	}
}

func TestBackend_ListError(t *testing.T) {
	b := NewWithClient(&mockSecretsManagerClient{
		listErr: awserr.New("AccessDeniedException", "denied", nil),
	}, nil)

	if _, err := b.List(context.Background(), false); err == nil {
		t.Error("List() should propagate the SDK error")
	}
}

func TestBackend_Get(t *testing.T) {
	client := &mockSecretsManagerClient{
		values: map[string]*sm.GetSecretValueOutput{
			"prod/web": {
				Name:         aws.String("prod/web"),
				ARN:          aws.String("arn:web"),
				VersionId:    aws.String("ver-222"),
				SecretString: aws.String(`{"certificate":"C","private_key":"K","certificate_chain":"CH","domain_name":"web.example.com","passphrase":"pw"}`),
			},
		},
		describe: map[string]*sm.DescribeSecretOutput{
			"prod/web": {Tags: []*sm.Tag{{Key: aws.String("env"), Value: aws.String("prod")}}},
		},
	}
	b := NewWithClient(client, nil)

	e, err := b.Get(context.Background(), "prod/web")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if e.Certificate != "C" || e.PrivateKey != "K" || e.CertificateChain != "CH" {
		t.Errorf("entry material = %+v", e)
	}
	if e.DomainName != "web.example.com" || e.Passphrase != "pw" {
		t.Errorf("entry fields = %+v", e)
	}
	if e.VersionMarker != "ver-222" {
		t.Errorf("VersionMarker = %q, want ver-222", e.VersionMarker)
	}
	if e.Tags["env"] != "prod" {
		t.Errorf("Tags = %v", e.Tags)
	}
}

func TestBackend_GetErrors(t *testing.T) {
	client := &mockSecretsManagerClient{
		values: map[string]*sm.GetSecretValueOutput{
			"binary":   {Name: aws.String("binary"), SecretBinary: []byte{1, 2}},
			"not-json": {Name: aws.String("not-json"), SecretString: aws.String("-----BEGIN")},
		},
	}
	b := NewWithClient(client, nil)

	tests := []struct {
		name string
		want *domain.DomainError
	}{
		{"missing", domain.ErrRemoteNotFound},
		{"binary", domain.ErrMalformedDescriptor},
		{"not-json", domain.ErrMalformedDescriptor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := b.Get(context.Background(), tt.name); !errors.Is(err, tt.want) {
				t.Errorf("Get(%q) error = %v, want %v", tt.name, err, tt.want)
			}
		})
	}
}

func TestBackend_GetDescribeFailureKeepsEntry(t *testing.T) {
	client := &mockSecretsManagerClient{
		values: map[string]*sm.GetSecretValueOutput{
			"web": {Name: aws.String("web"), SecretString: aws.String(`{"certificate":"C","private_key":"K"}`)},
		},
		describeErr: awserr.NewRequestFailure(awserr.New("ThrottlingException", "slow down", nil), http.StatusBadRequest, "req-1"),
	}
	b := NewWithClient(client, nil)

	e, err := b.Get(context.Background(), "web")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if e.Tags != nil {
		t.Errorf("Tags = %v, want nil when describe fails", e.Tags)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(awserr.New(sm.ErrCodeResourceNotFoundException, "gone", nil)) {
		t.Error("ResourceNotFoundException should be classified as not found")
	}
	if isNotFound(awserr.New(sm.ErrCodeInternalServiceError, "boom", nil)) {
		t.Error("InternalServiceError should not be classified as not found")
	}
	if isNotFound(errors.New("plain")) {
		t.Error("plain errors should not be classified as not found")
	}
}

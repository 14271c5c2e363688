package s3infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-autoresign/internal/config"
	"github.com/go-autoresign/internal/domain"
	"github.com/go-autoresign/internal/infrastructure/awsconf"
)

type putAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ReportStore archives tick reports as JSON objects.
type ReportStore struct {
	client putAPI
	bucket string
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(awsCfg aws.Config, cfg *config.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if ep := awsconf.Endpoint(cfg); ep != nil {
			o.BaseEndpoint = ep
			o.UsePathStyle = true
		}
	})
}

func NewReportStore(client putAPI, bucket string) *ReportStore {
	return &ReportStore{client: client, bucket: bucket}
}

// ReportKey returns the object key of a report, partitioned by day.
func ReportKey(r domain.TickReport) string {
	return fmt.Sprintf("ticks/%s/%s.json", r.StartedAt.UTC().Format("2006/01/02"), r.TickID)
}

func (s *ReportStore) SaveReport(ctx context.Context, r domain.TickReport) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal tick report: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(ReportKey(r)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

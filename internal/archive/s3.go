// Package archive uploads report JSON to an S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rankscore/aeo-insight/internal/model"
	"github.com/rankscore/aeo-insight/internal/platform/config"
)

const keyPrefix = "reports/"

// Archive writes reports to object storage as reports/<id>.json.
type Archive struct {
	client *s3.Client
	bucket string
}

// New builds an Archive from cfg. A custom endpoint switches the client to
// path-style addressing, which MinIO and most S3 clones expect.
func New(ctx context.Context, cfg config.ArchiveConfig) (*Archive, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			}, nil
		})),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &Archive{client: client, bucket: cfg.Bucket}, nil
}

// Key returns the object key a report is stored under.
func Key(reportID string) string {
	return keyPrefix + reportID + ".json"
}

// Save uploads r. The owning account, if any, is kept as object metadata.
func (a *Archive) Save(ctx context.Context, accountID string, r *model.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("archive: encode report: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(Key(r.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}
	if accountID != "" {
		input.Metadata = map[string]string{"account-id": accountID}
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("archive: put %s: %w", Key(r.ID), err)
	}
	return nil
}

package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"gw2_isac/analysis"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// PutObjectAPI is the part of the s3 client the archiver uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver writes finished reports to a bucket. A nil *Archiver is disabled.
type Archiver struct {
	client PutObjectAPI
	bucket string
}

// New returns nil when bucket is empty.
// endpoint overrides the s3 endpoint and switches to path-style urls, for LocalStack.
func New(ctx context.Context, bucket, endpoint string) (*Archiver, error) {
	if bucket == "" {
		return nil, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var client *s3.Client
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
		client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(cfg)
	}

	return NewWithClient(client, bucket), nil
}

func NewWithClient(client PutObjectAPI, bucket string) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
	}
}

func Key(r *analysis.Report) string {
	return fmt.Sprintf("runs/%04d/%02d/%s.json", r.Created.Year(), int(r.Created.Month()), r.ID)
}

func (a *Archiver) Enabled() bool {
	return a != nil
}

// Put uploads the report as json under Key.
func (a *Archiver) Put(ctx context.Context, r *analysis.Report) error {
	if a == nil {
		return nil
	}

	body, err := jsoniter.Marshal(r)
	if err != nil {
		return errors.WithStack(err)
	}

	key := Key(r)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, "put s3://%s/%s", a.bucket, key)
	}

	log.Printf("%s: Archived to s3://%s/%s", r.ID, a.bucket, key)
	return nil
}

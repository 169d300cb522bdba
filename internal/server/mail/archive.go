package mail

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

// S3Config describes the bucket delivered reminders are archived to.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	RootUser     string
	RootPassword string
}

// ObjectPutter is the subset of the S3 client the archive needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Client builds an S3 client for an S3-compatible endpoint with static credentials.
func NewS3Client(ctx context.Context, c S3Config) (ObjectPutter, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.RootUser,
			c.RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// ArchiveKey returns the object key for a message sent to borrowerID at t.
func ArchiveKey(t time.Time, borrowerID string) string {
	return fmt.Sprintf("reminders/%04d/%02d/%02d/%s/%s.eml", t.Year(), t.Month(), t.Day(), borrowerID, uuid.New())
}

// ArchivingTransport stores a copy of every delivered message in S3.
// Archive failures are logged and never change the delivery outcome.
type ArchivingTransport struct {
	next   Transport
	putter ObjectPutter
	bucket string
	from   string
	clock  clock.Clock
	logger logging.Logger
}

func NewArchivingTransport(next Transport, putter ObjectPutter, bucket, from string, clk clock.Clock, l logging.Logger) *ArchivingTransport {
	if from == "" {
		from = DefaultFrom
	}
	return &ArchivingTransport{
		next:   next,
		putter: putter,
		bucket: bucket,
		from:   from,
		clock:  clk,
		logger: l.With("module", "mail_archive"),
	}
}

func (a *ArchivingTransport) Send(ctx context.Context, m Message) (Outcome, error) {
	outcome, err := a.next.Send(ctx, m)
	if err != nil || outcome != Delivered {
		return outcome, err
	}
	if err := a.archive(ctx, m); err != nil {
		a.logger.Warn(ctx, "failed to archive reminder", "borrower_id", m.BorrowerID, "error", err)
	}
	return outcome, nil
}

func (a *ArchivingTransport) archive(ctx context.Context, m Message) error {
	now := a.clock.Now()
	raw, err := Compose(a.from, m, now)
	if err != nil {
		return err
	}
	key := ArchiveKey(now.UTC(), m.BorrowerID)
	_, err = a.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("message/rfc822"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

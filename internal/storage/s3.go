package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/tweet"
)

// objectAPI is the part of *s3.Client the bucket uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Bucket stores tweet photos in S3 and serves them by public URL.
type Bucket struct {
	client objectAPI
	name   string
	region string
}

type Options struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

func NewS3(ctx context.Context, opts Options) (*Bucket, error) {
	if opts.Bucket == "" || opts.Region == "" {
		return nil, fmt.Errorf("AWS_BUCKET_NAME et AWS_REGION requis")
	}
	loaders := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loaders = append(loaders, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("chargement config AWS: %w", err)
	}
	return newBucket(s3.NewFromConfig(cfg), opts.Bucket, opts.Region), nil
}

func newBucket(client objectAPI, name, region string) *Bucket {
	return &Bucket{client: client, name: name, region: region}
}

func (b *Bucket) Upload(ctx context.Context, key string, a tweet.Attachment) (tweet.BlobHandle, error) {
	key = strings.TrimLeft(key, "/")
	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(key),
		Body:          bytes.NewReader(a.Data),
		ContentLength: aws.Int64(int64(len(a.Data))),
	}
	if a.ContentType != "" {
		input.ContentType = aws.String(a.ContentType)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return tweet.BlobHandle{}, fmt.Errorf("upload échoué: %w", err)
	}
	return tweet.BlobHandle{Key: key}, nil
}

// ResolveURL checks the object exists before handing out its URL.
func (b *Bucket) ResolveURL(ctx context.Context, handle tweet.BlobHandle) (string, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(handle.Key),
	})
	if err != nil {
		return "", fmt.Errorf("objet %s introuvable: %w", handle.Key, err)
	}
	return b.PublicURL(handle.Key), nil
}

func (b *Bucket) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.name, b.region, key)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 stores result images in a public S3-compatible bucket under the
// generated/ prefix. Path-style addressing is used (required by CEPH/Hetzner).
type S3 struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for public files
}

// NewS3 creates an S3 result store. Returns (nil, nil) if endpoint or
// credentials are empty, allowing the app to fall back to local storage.
func NewS3(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*S3, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, errors.New("storage: s3 bucket is empty")
	}

	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3{
		s3:        client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Put uploads data with a public-read ACL and returns its public URL.
func (c *S3) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := GeneratedPrefix + name
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return c.FileURL(key), nil
}

// Delete removes a result image. S3 deletes are idempotent, so existence is
// checked first to report ErrNotFound.
func (c *S3) Delete(ctx context.Context, name string) error {
	key := GeneratedPrefix + name
	_, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return ErrNotFound
		}
		return fmt.Errorf("s3 head %s/%s: %w", c.bucket, key, err)
	}

	if _, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// Sweep lists the generated/ prefix and deletes objects older than cutoff.
func (c *S3) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	pager := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(GeneratedPrefix),
	})

	var removed int
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return removed, fmt.Errorf("s3 list %s/%s: %w", c.bucket, GeneratedPrefix, err)
		}
		for _, obj := range page.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}
			if _, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(c.bucket),
				Key:    obj.Key,
			}); err != nil {
				return removed, fmt.Errorf("s3 delete %s/%s: %w", c.bucket, aws.ToString(obj.Key), err)
			}
			removed++
		}
	}
	return removed, nil
}

// FileURL returns the public URL for a key in the bucket.
// Uses the configured public URL if set, otherwise builds a path-style URL.
func (c *S3) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// ExtractName returns the result image name from a public URL produced by
// FileURL, or ("", false) if the URL does not belong to this bucket.
func (c *S3) ExtractName(rawURL string) (string, bool) {
	if i := strings.IndexByte(rawURL, '?'); i != -1 {
		rawURL = rawURL[:i]
	}
	prefixes := []string{c.endpoint + "/" + c.bucket + "/" + GeneratedPrefix}
	if c.publicURL != "" {
		prefixes = append([]string{c.publicURL + "/" + GeneratedPrefix}, prefixes...)
	}
	for _, p := range prefixes {
		if strings.HasPrefix(rawURL, p) {
			return rawURL[len(p):], true
		}
	}
	return "", false
}

// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// multipartThreshold is the size above which uploads go through the manager.
const multipartThreshold = 100 * 1024 * 1024

type S3Client struct {
	s3 *s3.Client
}

func NewS3Client(ctx context.Context, cfgCreds S3Config) (*S3Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfgCreds.Region),
	}
	if cfgCreds.AccessKey != "" {
		creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfgCreds.AccessKey,
			cfgCreds.SecretKey,
			cfgCreds.AccessToken,
		))
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Options := func(o *s3.Options) {
		if cfgCreds.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfgCreds.EndpointURL)
			o.UsePathStyle = true // MinIO and most S3-compatible stores
		}
	}

	return &S3Client{
		s3: s3.NewFromConfig(cfg, s3Options),
	}, nil
}

// S3File is one listed object; Name is the key relative to the listed prefix.
type S3File struct {
	Path         string
	Name         string
	Size         int64
	LastModified string
}

// ListFilesAll walks every page under prefix.
func (c *S3Client) ListFilesAll(ctx context.Context, bucket string, prefix string) ([]S3File, error) {
	var all []S3File
	pages := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1000),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in S3: %w", err)
		}
		all = append(all, objectsToFiles(page.Contents, prefix)...)
	}
	return all, nil
}

// objectsToFiles drops zero-byte "folder/" placeholders.
func objectsToFiles(objects []types.Object, prefix string) []S3File {
	files := make([]S3File, 0, len(objects))
	for _, obj := range objects {
		key := aws.ToString(obj.Key)
		size := aws.ToInt64(obj.Size)
		if size == 0 && strings.HasSuffix(key, "/") {
			continue
		}
		f := S3File{Path: key, Name: strings.TrimPrefix(key, prefix), Size: size}
		if obj.LastModified != nil {
			f.LastModified = obj.LastModified.UTC().Format(time.RFC3339)
		}
		files = append(files, f)
	}
	return files
}

/* -------------------- PROGRESS HOOK -------------------- */

// ProgressHook receives transfer progress for one key (object key or local path).
type ProgressHook struct {
	OnStart    func(key string, totalBytes int64)
	OnProgress func(key string, written, totalBytes int64)
	OnDone     func(key string, totalBytes int64, took time.Duration)
}

func (h *ProgressHook) Start(key string, total int64) {
	if h != nil && h.OnStart != nil {
		h.OnStart(key, total)
	}
}

func (h *ProgressHook) Done(key string, total int64, took time.Duration) {
	if h != nil && h.OnDone != nil {
		h.OnDone(key, total, took)
	}
}

type progressWriter struct {
	key        string
	total      int64
	written    int64
	lastEmit   time.Time
	interval   time.Duration
	onProgress func(key string, written, total int64)
}

// NewProgressWriter returns a writer that counts bytes and reports them to
// hook at most every 250ms, plus once when total is reached. total may be -1.
func NewProgressWriter(key string, total int64, hook *ProgressHook) io.Writer {
	pw := &progressWriter{key: key, total: total, interval: 250 * time.Millisecond}
	if hook != nil {
		pw.onProgress = hook.OnProgress
	}
	return pw
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.written += int64(n)
	now := time.Now()
	if pw.onProgress != nil && (pw.written == pw.total || now.Sub(pw.lastEmit) >= pw.interval) {
		pw.onProgress(pw.key, pw.written, pw.total)
		pw.lastEmit = now
	}
	return n, nil
}

/* -------------------- UPLOAD -------------------- */

// UploadWithProgress uploads body under bucket/key. Bodies larger than 100MB
// go through the multipart manager.
func (c *S3Client) UploadWithProgress(
	ctx context.Context,
	bucket, key string,
	body io.ReadSeeker,
	size int64,
	hook *ProgressHook,
) error {
	header := make([]byte, 512)
	n, _ := io.ReadFull(body, header)
	contentType := http.DetectContentType(header[:n])
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind error: %w", err)
	}

	hook.Start(key, size)
	start := time.Now()
	reader := io.TeeReader(body, NewProgressWriter(key, size, hook))

	var err error
	if size > multipartThreshold {
		_, err = manager.NewUploader(c.s3).Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        reader,
			ContentType: aws.String(contentType),
		})
	} else {
		_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			Body:          reader,
			ContentLength: aws.Int64(size),
			ContentType:   aws.String(contentType),
		})
	}
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	hook.Done(key, size, time.Since(start))
	return nil
}

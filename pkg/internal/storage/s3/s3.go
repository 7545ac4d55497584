// Package s3 按账号连接对象存储后端，负责连通性探测与对象读写.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/soumik183/instavault/pkg/configs"
	nlog "github.com/soumik183/instavault/pkg/log"
)

// ConnectionParams 一个账号的连接参数，对上层是不透明数据.
type ConnectionParams struct {
	Endpoint  string `json:"endpoint"   rule:"required"`
	AccessKey string `json:"access_key" rule:"required"`
	SecretKey string `json:"secret_key" rule:"required"`
}

// Client 包装某个账号的 MinIO 客户端及其桶约定.
type Client struct {
	*minio.Client

	bucket         string
	region         string
	maxObjectBytes int64
	presignExpiry  time.Duration
}

// ErrObjectTooLarge 超过单对象大小硬上限时返回，直接拒绝而不是截断.
type ErrObjectTooLarge struct {
	Size  int64
	Limit int64
}

func (e *ErrObjectTooLarge) Error() string {
	return fmt.Sprintf("object size %d exceeds per-object limit %d", e.Size, e.Limit)
}

// Dial 根据连接参数创建账号客户端；只建立客户端，不做网络调用.
func Dial(params ConnectionParams, cfg *configs.StorageConfig) (*Client, error) {
	endpoint := params.Endpoint
	useSSL := false
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(params.AccessKey, params.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	cli.SetAppInfo("instavault", configs.AppVersion)

	return &Client{
		Client:         cli,
		bucket:         cfg.Bucket,
		region:         cfg.Region,
		maxObjectBytes: cfg.MaxObjectBytes,
		presignExpiry:  cfg.PresignExpiry,
	}, nil
}

// Probe 连通性与能力检查：列桶验证凭证可用，工作桶不存在则创建（私有桶）.
// 任何后端错误原样向上返回，由调用方决定是否以及何时重探.
func (c *Client) Probe(ctx context.Context) error {
	if _, err := c.ListBuckets(ctx); err != nil {
		return err
	}

	exists, err := c.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}

	if !exists {
		if err := c.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
			return err
		}

		nlog.Logger().Info().Str("bucket", c.bucket).Msg("working bucket created")
	}

	return nil
}

// Put 将对象写入工作桶. 超过单对象上限直接失败，由客户端兜底这一约定
// （后端不支持按桶配置对象大小上限时仍能快速拒绝）.
func (c *Client) Put(ctx context.Context, objectPath string, reader io.Reader, size int64, contentType string) (string, error) {
	if c.maxObjectBytes > 0 && size > c.maxObjectBytes {
		return "", &ErrObjectTooLarge{Size: size, Limit: c.maxObjectBytes}
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := c.PutObject(ctx, c.bucket, objectPath, reader, size, opts); err != nil {
		return "", err
	}

	return c.ObjectURL(objectPath), nil
}

// Get 打开对象的可读流，调用方负责 Close.
func (c *Client) Get(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	obj, err := c.GetObject(ctx, c.bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	// GetObject 是惰性的，先 Stat 确认对象存在
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}

	return obj, nil
}

// Remove 从工作桶删除对象.
func (c *Client) Remove(ctx context.Context, objectPath string) error {
	return c.RemoveObject(ctx, c.bucket, objectPath, minio.RemoveObjectOptions{})
}

// ObjectURL 返回对象的可取回 URL（桶为私有，实际访问需预签名或凭证）.
func (c *Client) ObjectURL(objectPath string) string {
	return c.EndpointURL().JoinPath(c.bucket, objectPath).String()
}

// PresignedGetURL 生成对象的预签名访问 URL，用于浏览器直接取回.
func (c *Client) PresignedGetURL(ctx context.Context, objectPath string) (string, error) {
	u, err := c.PresignedGetObject(ctx, c.bucket, objectPath, c.presignExpiry, url.Values{})
	if err != nil {
		return "", err
	}

	return u.String(), nil
}

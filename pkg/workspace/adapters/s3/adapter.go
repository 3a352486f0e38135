package s3

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hashicorp/go-hclog"

	"github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
)

const (
	workspacesDir = "workspaces/"
	objectExt     = ".json"

	// Object metadata keys.
	metaVersion = "workspace-version"
	metaName    = "workspace-name"
)

// Client is the subset of the S3 API the store uses.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store keeps one JSON object per workspace. Saves are conditional on the
// ETag read during the version check, so concurrent writers from other
// processes surface as workspace.ErrConflict.
type Store struct {
	client Client
	cfg    *Config
	logger hclog.Logger
}

var _ tree.Store = (*Store)(nil)

// NewStore creates a store talking to the configured bucket.
func NewStore(cfg *Config, logger hclog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid S3 configuration: %w", err)
	}
	cfg.SetDefaults()

	awsCfg, err := createAWSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing for MinIO
			o.UsePathStyle = true
		}
	})
	return NewStoreWithClient(client, cfg, logger), nil
}

// NewStoreWithClient creates a store on top of an existing client.
func NewStoreWithClient(client Client, cfg *Config, logger hclog.Logger) *Store {
	cfg.SetDefaults()
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &Store{
		client: client,
		cfg:    cfg,
		logger: logger.Named("s3-store"),
	}
	s.logger.Info("S3 workspace store initialized", "bucket", cfg.Bucket, "prefix", cfg.Prefix)
	return s
}

// createAWSConfig creates AWS SDK configuration from S3 config
func createAWSConfig(cfg *Config) (aws.Config, error) {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify,
			},
		},
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(httpClient),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	return config.LoadDefaultConfig(context.Background(), opts...)
}

func (s *Store) key(workspaceID string) string {
	return s.cfg.Prefix + workspacesDir + workspaceID + objectExt
}

func (s *Store) ListWorkspaces(ctx context.Context) ([]tree.WorkspaceInfo, error) {
	infos := []tree.WorkspaceInfo{}
	prefix := s.cfg.Prefix + workspacesDir

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list workspaces: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, objectExt) {
				continue
			}
			id := strings.TrimSuffix(strings.TrimPrefix(key, prefix), objectExt)
			if strings.Contains(id, "/") {
				continue
			}

			head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(s.cfg.Bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to read workspace %s: %w", id, err)
			}
			infos = append(infos, tree.WorkspaceInfo{ID: id, Name: head.Metadata[metaName]})
		}
	}

	tree.SortInfos(infos)
	return infos, nil
}

func (s *Store) Load(ctx context.Context, workspaceID string) (*tree.Snapshot, error) {
	snap, _, err := s.get(ctx, workspaceID)
	return snap, err
}

// get returns the stored snapshot and its ETag.
func (s *Store) get(ctx context.Context, workspaceID string) (*tree.Snapshot, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(workspaceID)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, "", workspace.NotFoundf(workspace.ErrWorkspaceNotFound, workspaceID)
		}
		return nil, "", fmt.Errorf("failed to get workspace %s: %w", workspaceID, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read workspace %s: %w", workspaceID, err)
	}
	var snap tree.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, "", fmt.Errorf("failed to decode workspace %s: %w", workspaceID, err)
	}
	return &snap, aws.ToString(out.ETag), nil
}

func (s *Store) Save(ctx context.Context, snap *tree.Snapshot) error {
	current, etag, err := s.get(ctx, snap.WorkspaceID)
	if err != nil && !errors.Is(err, workspace.ErrWorkspaceNotFound) {
		return err
	}
	if err := tree.CheckVersion(current, snap); err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode workspace: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(s.key(snap.WorkspaceID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			metaVersion: fmt.Sprintf("%d", snap.Version),
			metaName:    snap.Name,
		},
	}
	if current == nil {
		input.IfNoneMatch = aws.String("*")
	} else {
		input.IfMatch = aws.String(etag)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return fmt.Errorf("%w: workspace %s changed concurrently", workspace.ErrConflict, snap.WorkspaceID)
		}
		return fmt.Errorf("failed to put workspace %s: %w", snap.WorkspaceID, err)
	}

	s.logger.Debug("saved workspace", "workspace", snap.WorkspaceID, "version", snap.Version)
	return nil
}

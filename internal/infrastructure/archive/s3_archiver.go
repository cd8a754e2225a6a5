package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/studyquest/internal/domain/ranking"
	"github.com/riskibarqy/studyquest/internal/domain/season"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3SnapshotArchiver writes materialized leaderboards of closed seasons to an
// S3-compatible bucket (R2 works with Endpoint set and Region "auto").
type S3SnapshotArchiver struct {
	client objectPutter
	bucket string
	logger *logging.Logger
}

func NewS3SnapshotArchiver(ctx context.Context, cfg S3Config, logger *logging.Logger) (*S3SnapshotArchiver, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("snapshot archive bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3SnapshotArchiver(client, cfg.Bucket, logger), nil
}

func newS3SnapshotArchiver(client objectPutter, bucket string, logger *logging.Logger) *S3SnapshotArchiver {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3SnapshotArchiver{
		client: client,
		bucket: strings.TrimSpace(bucket),
		logger: logger,
	}
}

type archivedSnapshot struct {
	SeasonID       string        `json:"season_id"`
	SeasonName     string        `json:"season_name"`
	StartsAt       time.Time     `json:"starts_at"`
	EndsAt         *time.Time    `json:"ends_at,omitempty"`
	MaterializedAt time.Time     `json:"materialized_at"`
	Rows           []archivedRow `json:"rows"`
}

type archivedRow struct {
	ActorID             string `json:"actor_id"`
	DisplayName         string `json:"display_name"`
	League              string `json:"league"`
	Premium             bool   `json:"premium"`
	BasisXP             int64  `json:"basis_xp"`
	RankOverall         int    `json:"rank_overall"`
	RankInLeague        int    `json:"rank_in_league"`
	RankPremiumInLeague *int   `json:"rank_premium_in_league,omitempty"`
}

func (a *S3SnapshotArchiver) Archive(ctx context.Context, item season.Season, rows []ranking.Row, materializedAt time.Time) error {
	doc := archivedSnapshot{
		SeasonID:       item.ID,
		SeasonName:     item.Name,
		StartsAt:       item.StartsAt,
		EndsAt:         item.EndsAt,
		MaterializedAt: materializedAt.UTC(),
		Rows:           make([]archivedRow, 0, len(rows)),
	}
	for _, row := range rows {
		doc.Rows = append(doc.Rows, archivedRow{
			ActorID:             row.ActorID,
			DisplayName:         row.DisplayName,
			League:              string(row.League),
			Premium:             row.Premium,
			BasisXP:             row.BasisXP,
			RankOverall:         row.RankOverall,
			RankInLeague:        row.RankInLeague,
			RankPremiumInLeague: row.RankPremiumInLeague,
		})
	}

	body, err := sonic.Marshal(doc)
	if err != nil {
		return crerr.Wrap(err, "encode snapshot archive")
	}

	key := ObjectKey(item.ID, materializedAt)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return crerr.Wrapf(err, "put snapshot archive key=%s", key)
	}

	a.logger.InfoContext(ctx, "snapshot archived", "season_id", item.ID, "key", key, "rows", len(rows))
	return nil
}

// ObjectKey is snapshots/{seasonID}/{RFC3339 basic timestamp}.json.
func ObjectKey(seasonID string, materializedAt time.Time) string {
	return fmt.Sprintf("snapshots/%s/%s.json", seasonID, materializedAt.UTC().Format("20060102T150405Z"))
}

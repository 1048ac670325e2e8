// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"clan-bingo-system/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var r2Client *s3.Client
var r2Bucket string

// InitR2 configures the R2 client for event-history exports. Optional: when
// the env vars are absent the exporter stays nil and archives live only in
// the database.
func InitR2() error {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("R2_ACCESS_KEY_SECRET")
	r2Bucket = os.Getenv("R2_BUCKET_NAME")

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to load R2 config: %w", err)
	}

	r2Client = s3.NewFromConfig(cfg)
	return nil
}

// R2ArchiveExporter uploads completed-event archives as JSON objects.
type R2ArchiveExporter struct{}

// eventArchive is the export envelope.
type eventArchive struct {
	Event      models.BingoEvent     `json:"event"`
	ArchivedAt time.Time             `json:"archived_at"`
	Rows       []models.BingoHistory `json:"rows"`
}

// ExportEventArchive writes one event's archived progress rows to R2 under
// archives/event_<id>.json.
func (R2ArchiveExporter) ExportEventArchive(event models.BingoEvent, rows []models.BingoHistory) error {
	if r2Client == nil {
		return fmt.Errorf("R2 client not initialized")
	}

	payload, err := json.Marshal(eventArchive{
		Event:      event,
		ArchivedAt: time.Now(),
		Rows:       rows,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}

	key := fmt.Sprintf("archives/event_%d.json", event.EventID)
	_, err = r2Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(r2Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive to R2: %w", err)
	}
	return nil
}

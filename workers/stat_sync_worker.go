// workers/stat_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"clan-bingo-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredPlayer matches the JSON response from the hiscores sync service.
type MirroredPlayer struct {
	PlayerID uint   `json:"player_id"`
	RSN      string `json:"rsn"`
	IsActive bool   `json:"is_active"`
}

// MirroredStat is one (player, domain, metric) snapshot from the sync
// service.
type MirroredStat struct {
	PlayerID uint   `json:"player_id"`
	Domain   string `json:"domain"`
	Metric   string `json:"metric"`
	Kills    int64  `json:"kills"`
	Exp      int64  `json:"exp"`
	Level    int64  `json:"level"`
	Score    int64  `json:"score"`
}

// GetStatChangesResponse is the top-level structure of the sync service
// response.
type GetStatChangesResponse struct {
	Players []MirroredPlayer `json:"players"`
	Stats   []MirroredStat   `json:"stats"`
}

// StatSyncWorker mirrors the membership registry and stat snapshots into
// the local players / player_stats tables. The engine only ever reads the
// mirror, so a sync outage degrades to stale data instead of failures.
type StatSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8600"
	endpointPath string // e.g., "/api/v1/hiscores/changes"
	serviceToken string
	httpClient   *http.Client
}

func NewStatSyncWorker(db *gorm.DB, syncServiceBaseURL, endpointPath, serviceToken string) *StatSyncWorker {
	return &StatSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *StatSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Stat Sync Worker (hiscores → players/player_stats)…")
	go w.run(ctx)
}

func (w *StatSyncWorker) run(ctx context.Context) {
	// Initial sync - backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial stat sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lastSyncTime := w.getLastSyncTime()
			if err := w.syncBatch(ctx, lastSyncTime); err != nil {
				log.Printf("❌ Stat sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Stat Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local mirror.
func (w *StatSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM player_stats").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches changes from the sync service and upserts them locally.
func (w *StatSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base sync service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to sync service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sync service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetStatChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode sync service response: %w", err)
	}

	if len(response.Players) == 0 && len(response.Stats) == 0 {
		return nil
	}
	log.Printf("[SYNC] 📥 Processing %d player(s), %d stat row(s) from sync service…",
		len(response.Players), len(response.Stats))

	var errorCount int
	for _, remote := range response.Players {
		player := models.Player{
			PlayerID: remote.PlayerID,
			RSN:      remote.RSN,
			IsActive: remote.IsActive,
		}
		if err := w.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rsn", "is_active"}),
		}).Create(&player).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert player %d (%s): %v", remote.PlayerID, remote.RSN, err)
		}
	}

	for _, remote := range response.Stats {
		stat := models.PlayerStat{
			PlayerID: remote.PlayerID,
			Domain:   remote.Domain,
			Metric:   remote.Metric,
			Kills:    remote.Kills,
			Exp:      remote.Exp,
			Level:    remote.Level,
			Score:    remote.Score,
		}
		if err := w.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}, {Name: "domain"}, {Name: "metric"}},
			DoUpdates: clause.AssignmentColumns([]string{"kills", "exp", "level", "score"}),
		}).Create(&stat).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert stat (player=%d, %s/%s): %v",
				remote.PlayerID, remote.Domain, remote.Metric, err)
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("stat sync finished with %d error(s)", errorCount)
	}
	return nil
}

package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"clan-bingo-system/handlers"
	"clan-bingo-system/middleware"
	"clan-bingo-system/models"
	"clan-bingo-system/services"
	"clan-bingo-system/utils"
	"clan-bingo-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Player{},
		&models.PlayerStat{},
		&models.CatalogMetric{},
		&models.DropItem{},
		&models.BingoTask{},
		&models.BingoEvent{},
		&models.BingoState{},
		&models.BingoBoard{},
		&models.BingoBoardCell{},
		&models.BingoTeam{},
		&models.BingoTeamMember{},
		&models.EventBaseline{},
		&models.TaskProgress{},
		&models.BingoHistory{},
		&models.LeaderboardEntry{},
		&models.PatternAward{},
		&models.RotationSchedule{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// The engine cannot run without a task catalog.
	if err := utils.SeedCatalog(db); err != nil {
		log.Fatal("failed to seed catalog:", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rows := envInt("BOARD_ROWS", 3)
	cols := envInt("BOARD_COLS", 5)
	duration := time.Duration(envInt("EVENT_DURATION_DAYS", 28)) * 24 * time.Hour
	tickInterval := time.Duration(envInt("TICK_INTERVAL_MINUTES", 5)) * time.Minute

	taskGenService := services.NewTaskGenService(db, rng)
	boardService := services.NewBoardService(db, rng, rows, cols)
	teamService := services.NewTeamService(db)
	progressService := services.NewProgressService(db, teamService)
	recognitionService := services.NewRecognitionService(db)
	leaderboardService := services.NewLeaderboardService(db, recognitionService)
	lifecycleService := services.NewLifecycleService(db, taskGenService, boardService,
		progressService, teamService, recognitionService, leaderboardService, duration)
	adminService := services.NewAdminService(db, lifecycleService)
	notificationService := services.NewNotificationService(db, lifecycleService, leaderboardService)

	// Archive export to R2 is optional; without credentials archives live in
	// bingo_history only.
	if os.Getenv("R2_ACCESS_KEY_ID") != "" {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		lifecycleService.Exporter = utils.R2ArchiveExporter{}
		log.Println("✅ R2 archive export enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Without the sync service the engine still serves boards and admin
	// writes; stat-driven progress just stays frozen.
	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	serviceToken := os.Getenv("BINGO_SERVICE_TOKEN")
	syncEnabled := syncServiceURL != "" && serviceToken != ""
	if syncEnabled {
		statSyncWorker := workers.NewStatSyncWorker(db, syncServiceURL, "/api/v1/hiscores/changes", serviceToken)
		statSyncWorker.Start(ctx)
	} else {
		log.Println("⚠️  SYNC_SERVICE_URL / BINGO_SERVICE_TOKEN not set, stat sync worker disabled")
	}

	scheduler := services.NewSchedulerService(lifecycleService, tickInterval)
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler:", err)
	}
	defer scheduler.Stop()

	handlers.SetupBingoRoutes(app, lifecycleService, notificationService, teamService)
	handlers.SetupAdminRoutes(app, adminService, lifecycleService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	if syncEnabled {
		log.Println("✅ Stat Sync Worker running")
	}
	log.Printf("✅ Lifecycle scheduler running (tick every %s)", tickInterval)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("⚠️  Invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

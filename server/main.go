// Leadscout API server: gateway control, scrape job lifecycle, cookie
// management and CSV file serving for the lead-scraper dashboard.
package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"leadscout/auth"
	"leadscout/eventbus"
	"leadscout/gateway"
	"leadscout/scraper"
	"leadscout/scrapes"
)

// Config is assembled from environment variables with local-dev defaults.
type Config struct {
	Port            string
	RedisAddr       string
	NATSURL         string
	ScrapeDir       string
	CookiesFile     string
	GatewayCommand  []string
	GatewayURL      string
	GatewayStateDir string
	StaleAfter      time.Duration
	ScrollDelay     time.Duration
}

func loadConfig() Config {
	cfg := Config{
		Port:            envOr("PORT", "8001"),
		RedisAddr:       envOr("REDIS_ADDR", "localhost:6379"),
		NATSURL:         strings.TrimSpace(os.Getenv("NATS_URL")),
		ScrapeDir:       envOr("SCRAPE_DIR", "./scrape_files"),
		CookiesFile:     envOr("FB_COOKIES_FILE", "./fb_cookies.json"),
		GatewayCommand:  strings.Fields(envOr("GATEWAY_COMMAND", "openclaw gateway --port 18789")),
		GatewayURL:      envOr("GATEWAY_URL", "http://127.0.0.1:18789"),
		GatewayStateDir: envOr("GATEWAY_STATE_DIR", "./gateway_state"),
		StaleAfter:      scraper.DefaultStaleAfter,
		ScrollDelay:     800 * time.Millisecond,
	}
	if v := strings.TrimSpace(os.Getenv("SCRAPER_STALE_AFTER_MINUTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StaleAfter = time.Duration(n) * time.Minute
		}
	}
	if v := strings.TrimSpace(os.Getenv("SCROLL_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ScrollDelay = time.Duration(n) * time.Millisecond
		}
	}
	if strings.HasPrefix(cfg.RedisAddr, "redis://") {
		cfg.RedisAddr = strings.TrimPrefix(cfg.RedisAddr, "redis://")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// jobRunner launches scrape jobs in the background. Satisfied by
// *scraper.Worker.
type jobRunner interface {
	Run(ctx context.Context, job *scraper.Job)
}

// Server holds the wired components behind the HTTP handlers.
type Server struct {
	cfg      Config
	redis    *redis.Client
	store    scraper.Store
	worker   jobRunner
	jar      scraper.CookieJar
	files    scrapes.Dir
	sessions *auth.Store
	gw       *gateway.Manager
	events   *eventbus.Bus
}

func newServer(cfg Config, redisClient *redis.Client, events *eventbus.Bus) *Server {
	store := scraper.NewRedisStore(redisClient, cfg.StaleAfter)
	return &Server{
		cfg:    cfg,
		redis:  redisClient,
		store:  store,
		events: events,
		worker: scraper.NewWorker(store, events, scraper.Config{
			CookiesFile: cfg.CookiesFile,
			OutputDir:   cfg.ScrapeDir,
			ScrollDelay: cfg.ScrollDelay,
		}),
		jar:      scraper.CookieJar{Path: cfg.CookiesFile},
		files:    scrapes.Dir{Path: cfg.ScrapeDir},
		sessions: auth.NewStore(redisClient),
		gw:       gateway.NewManager(cfg.GatewayStateDir, cfg.GatewayCommand, cfg.GatewayURL),
	}
}

func (s *Server) router() *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})
	r.Use(s.sessions.Optional())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "timestamp": time.Now().Format(time.RFC3339)})
	})

	api := r.Group("/api")
	api.GET("/", s.root)

	// Legacy status checks kept for the dashboard's connectivity probe
	api.POST("/status", s.createStatusCheck)
	api.GET("/status", s.listStatusChecks)

	api.GET("/auth/me", s.sessions.Required(), s.authMe)
	api.POST("/auth/logout", s.sessions.Required(), s.authLogout)

	api.POST("/gateway/start", s.sessions.Required(), s.gatewayStart)
	api.POST("/gateway/stop", s.sessions.Required(), s.gatewayStop)
	api.GET("/gateway/token", s.sessions.Required(), s.gatewayToken)
	api.GET("/gateway/status", s.gatewayStatus)
	api.Any("/gateway/proxy/*path", s.gatewayProxy)

	api.GET("/scraper/industries", s.listIndustries)
	api.GET("/scraper/cookies/status", s.cookiesStatus)
	api.POST("/scraper/cookies", s.setCookies)
	api.DELETE("/scraper/cookies", s.deleteCookies)
	api.POST("/scraper/start", s.startScrape)
	api.GET("/scraper/jobs", s.listJobs)
	api.GET("/scraper/jobs/:id", s.getJob)
	api.POST("/scraper/jobs/:id/stop", s.stopJob)

	api.GET("/scrapes", s.listScrapes)
	api.GET("/scrapes/:filename/download", s.downloadScrape)
	api.DELETE("/scrapes/:filename", s.deleteScrape)

	return r
}

func (s *Server) root(c *gin.Context) {
	c.JSON(200, gin.H{"message": "Leadscout API", "version": "1.0"})
}

func main() {
	_ = godotenv.Load()
	gin.SetMode(gin.ReleaseMode)

	cfg := loadConfig()
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	var events *eventbus.Bus
	if cfg.NATSURL != "" {
		bus, err := eventbus.New(eventbus.Config{URL: cfg.NATSURL})
		if err != nil {
			log.Printf("⚠️ NATS unavailable, job events disabled: %v", err)
		} else {
			events = bus
			defer events.Close()
		}
	}

	s := newServer(cfg, redisClient, events)
	r := s.router()

	log.Printf("🚀 Leadscout API starting on :%s", cfg.Port)
	log.Printf("📁 Scrape output dir: %s", cfg.ScrapeDir)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

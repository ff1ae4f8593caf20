package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/david/tender-radar/internal/auth"
	"github.com/david/tender-radar/internal/db"
	"github.com/david/tender-radar/internal/ingest"
	"github.com/david/tender-radar/internal/models"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	Registry    *ingest.Registry

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	registry, err := ingest.LoadRegistry("internal/ingest/config/sources.yaml")
	if err != nil {
		log.Printf("source registry unavailable: %v", err)
		registry = &ingest.Registry{}
	}

	s := &Server{
		DB:          pool,
		Store:       db.NewStore(pool),
		AuthService: auth.NewService(pool),
		Echo:        e,
		Registry:    registry,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")
	api.GET("/notices", s.handleListNotices)
	api.GET("/notices/:id", s.handleGetNotice)
	api.GET("/stats", s.handleGetStats)

	// Admin Routes (Discovery & Extraction)
	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.POST("/discover/source/:id", s.handleDiscoverSource)
	admin.POST("/discover/all", s.handleDiscoverAll)
	admin.POST("/extract/batch", s.handleExtractBatch)
	admin.GET("/admin/runs", s.handleRecentRuns)
	admin.GET("/admin/job/:id", s.handleJobStatus)

	// Auth Routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Protected Routes (Saved Notices)
	saved := api.Group("/saved")
	saved.Use(auth.Middleware)
	saved.POST("/:id", s.handleSaveNotice)
	saved.DELETE("/:id", s.handleUnsaveNotice)
	saved.GET("", s.handleGetSavedNotices)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListNotices(c echo.Context) error {
	params := db.ListParams{
		Query:      c.QueryParam("q"),
		BuyerName:  c.QueryParam("buyer"),
		NoticeType: c.QueryParam("type"),
		Status:     c.QueryParam("status"),
		SortBy:     c.QueryParam("sort"),
		Limit:      20,
	}

	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	if raw := c.QueryParam("published_from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			params.PublishedFrom = &t
		}
	}
	if raw := c.QueryParam("published_to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			params.PublishedTo = &t
		}
	}
	if raw := c.QueryParam("has_lots"); raw != "" {
		val := raw == "true"
		params.HasLots = &val
	}

	result, err := s.Store.ListNotices(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to list notices: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetNotice(c echo.Context) error {
	id := c.Param("id")
	notice, err := s.Store.GetNotice(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, notice)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleDiscoverSource(c echo.Context) error {
	sourceID := c.Param("id")
	source, err := s.Registry.FindSource(sourceID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	pipeline := ingest.NewPipeline(s.DB, ingest.NewPoliteFetcher(source.Fetch))
	saved, err := pipeline.DiscoverSource(c.Request().Context(), *source)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": err.Error(),
			"saved": saved,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%s discovery complete", sourceID),
		"saved":   saved,
	})
}

func (s *Server) handleDiscoverAll(c echo.Context) error {
	ctx := c.Request().Context()
	results := map[string]interface{}{}

	for _, source := range s.Registry.Sources {
		pipeline := ingest.NewPipeline(s.DB, ingest.NewPoliteFetcher(source.Fetch))
		saved, err := pipeline.DiscoverSource(ctx, source)
		if err != nil {
			results[source.ID] = map[string]interface{}{"saved": saved, "error": err.Error()}
			continue
		}
		results[source.ID] = map[string]interface{}{"saved": saved}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "All registry sources discovered",
		"results": results,
	})
}

// handleExtractBatch launches an extraction batch in the background and
// returns a job handle immediately; extraction over many PDFs is far too
// slow to hold an HTTP request open for.
func (s *Server) handleExtractBatch(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":  "An extraction job is already running",
			"job_id": job.ID,
		})
	}

	limit := 100
	if raw := strings.TrimSpace(os.Getenv("BATCH_LIMIT")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 5000 {
			limit = parsed
		}
	}
	force := strings.EqualFold(c.QueryParam("force"), "true")

	// context.WithoutCancel detaches from the HTTP lifecycle but preserves
	// trace values. We add our own timeout for safety.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 30*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	go func() {
		defer jobCancel()
		fetchCfg := ingest.FetchConfig{}
		if len(s.Registry.Sources) > 0 {
			fetchCfg = s.Registry.Sources[0].Fetch
		}
		pipeline := ingest.NewPipeline(s.DB, ingest.NewPoliteFetcher(fetchCfg))

		stats, err := pipeline.ProcessBatch(jobCtx, limit, force, "api")
		s.jobMu.Lock()
		job.EndedAt = time.Now()
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
		} else {
			job.Status = "completed"
		}
		if stats != nil {
			job.Result = map[string]interface{}{
				"total":           stats.Total,
				"ok":              stats.OK,
				"empty_text":      stats.EmptyText,
				"download_failed": stats.DownloadFailed,
				"exceptions":      stats.Exceptions,
			}
		}
		s.jobMu.Unlock()
		log.Printf("[extract-job %s] finished status=%s", jobID, job.Status)
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Extraction job started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/admin/job/%s", jobID),
	})
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")
	s.jobMu.Lock()
	job := s.runningJob
	s.jobMu.Unlock()

	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	s.jobMu.Lock()
	resp := map[string]interface{}{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	s.jobMu.Unlock()

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRecentRuns(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	runs, err := s.Store.RecentRuns(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if runs == nil {
		runs = []db.ExtractRun{}
	}
	return c.JSON(http.StatusOK, runs)
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// Protected Handlers

func (s *Server) handleSaveNotice(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	noticeID := c.Param("id")
	if noticeID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid notice ID"})
	}

	if err := s.AuthService.SaveNotice(ctx, userID, noticeID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save notice"})
	}

	return c.NoContent(http.StatusOK)
}

func (s *Server) handleUnsaveNotice(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	noticeID := c.Param("id")
	if err := s.AuthService.UnsaveNotice(ctx, userID, noticeID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to unsave notice"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "unsaved"})
}

func (s *Server) handleGetSavedNotices(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	notices, err := s.AuthService.GetSavedNotices(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch saved notices"})
	}

	if notices == nil {
		notices = []models.Notice{}
	}

	return c.JSON(http.StatusOK, notices)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}

package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PayoutNotification is the body posted by the release processor when a
// commission becomes payable.
type PayoutNotification struct {
	PurchaseID      int64     `json:"purchase_id" binding:"required"`
	CedenteID       int64     `json:"cedente_id" binding:"required"`
	CommissionCents int64     `json:"commission_cents" binding:"required"`
	ReleasedAt      time.Time `json:"released_at"`
}

// NotifyResponse is what the processor expects back.
type NotifyResponse struct {
	NotificationID string `json:"notification_id"`
	Accepted       bool   `json:"accepted"`
	ErrorMsg       string `json:"error_message,omitempty"`
}

// StatusCheckResponse reports what the desk recorded for a purchase.
type StatusCheckResponse struct {
	PurchaseID      int64     `json:"purchase_id"`
	NotificationID  string    `json:"notification_id"`
	CommissionCents int64     `json:"commission_cents"`
	Accepted        bool      `json:"accepted"`
	ReceivedAt      time.Time `json:"received_at"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status     string    `json:"status"`
	DeskID     string    `json:"desk_id"`
	Timestamp  time.Time `json:"timestamp"`
	AcceptRate float64   `json:"accept_rate"`
}

// MockPayoutDesk simulates the back-office payment system that receives
// commission payout notifications.
type MockPayoutDesk struct {
	acceptRate float64
	minDelay   time.Duration
	maxDelay   time.Duration
	deskID     string
	rng        *rand.Rand

	mu       sync.Mutex
	received map[int64]*StatusCheckResponse
}

// NewMockPayoutDesk creates a new mock desk instance
func NewMockPayoutDesk(acceptRate float64, minDelay, maxDelay time.Duration) *MockPayoutDesk {
	return &MockPayoutDesk{
		acceptRate: acceptRate,
		minDelay:   minDelay,
		maxDelay:   maxDelay,
		deskID:     "MOCK_DESK_" + uuid.New().String()[:8],
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		received:   make(map[int64]*StatusCheckResponse),
	}
}

// handleNotification simulates the desk booking the payout.
func (m *MockPayoutDesk) handleNotification(req *PayoutNotification) *NotifyResponse {
	// Simulate back-office latency
	time.Sleep(m.randomDelay())

	response := &NotifyResponse{
		NotificationID: uuid.New().String(),
	}

	if m.shouldAccept() {
		response.Accepted = true

		log.Info().
			Int64("purchase_id", req.PurchaseID).
			Int64("cedente_id", req.CedenteID).
			Int64("amount_cents", req.CommissionCents).
			Msg("Commission payout accepted")
	} else {
		response.Accepted = false
		response.ErrorMsg = "payment desk temporarily rejecting payouts"

		log.Warn().
			Int64("purchase_id", req.PurchaseID).
			Int64("amount_cents", req.CommissionCents).
			Msg("Commission payout rejected")
	}

	m.mu.Lock()
	m.received[req.PurchaseID] = &StatusCheckResponse{
		PurchaseID:      req.PurchaseID,
		NotificationID:  response.NotificationID,
		CommissionCents: req.CommissionCents,
		Accepted:        response.Accepted,
		ReceivedAt:      time.Now(),
	}
	m.mu.Unlock()

	return response
}

func (m *MockPayoutDesk) lookup(purchaseID int64) (*StatusCheckResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.received[purchaseID]
	return r, ok
}

func (m *MockPayoutDesk) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	randomDelta := time.Duration(m.rng.Int63n(int64(delta)))
	return m.minDelay + randomDelta
}

func (m *MockPayoutDesk) shouldAccept() bool {
	return m.rng.Float64() < m.acceptRate
}

// Handler struct holds the mock desk and routes
type Handler struct {
	desk *MockPayoutDesk
}

func NewHandler(desk *MockPayoutDesk) *Handler {
	return &Handler{desk: desk}
}

// Notify handles payout notification requests
func (h *Handler) Notify(c *gin.Context) {
	var req PayoutNotification

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Int64("purchase_id", req.PurchaseID).
		Int64("cedente_id", req.CedenteID).
		Int64("amount_cents", req.CommissionCents).
		Msg("Received payout notification")

	response := h.desk.handleNotification(&req)

	statusCode := http.StatusOK
	if !response.Accepted {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetStatus handles payout status check requests
func (h *Handler) GetStatus(c *gin.Context) {
	var purchaseID int64
	if _, err := fmt.Sscanf(c.Param("purchase_id"), "%d", &purchaseID); err != nil || purchaseID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "purchase_id is required",
		})
		return
	}

	record, ok := h.desk.lookup(purchaseID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no payout recorded for purchase",
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		DeskID:     h.desk.deskID,
		Timestamp:  time.Now(),
		AcceptRate: h.desk.acceptRate,
	})
}

// UpdateConfig allows changing desk configuration at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		AcceptRate *float64 `json:"accept_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.AcceptRate != nil {
		if *config.AcceptRate >= 0 && *config.AcceptRate <= 1.0 {
			h.desk.acceptRate = *config.AcceptRate
			log.Info().Float64("rate", *config.AcceptRate).Msg("Updated accept rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Configuration updated",
		"accept_rate": h.desk.acceptRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Add request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/payouts/notify", handler.Notify)
		v1.GET("/payouts/status/:purchase_id", handler.GetStatus)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	// Root health check
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8081")
	acceptRate := getEnvFloat("ACCEPT_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 500*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("accept_rate", acceptRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock Payout Desk")

	// Create mock desk
	desk := NewMockPayoutDesk(acceptRate, minDelay, maxDelay)
	handler := NewHandler(desk)
	router := SetupRouter(handler)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

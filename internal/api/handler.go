package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"etuitions-server/internal/auth"
	"etuitions-server/internal/models"
	"etuitions-server/internal/service"
	"etuitions-server/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	users    *service.UserService
	catalog  *service.CatalogService
	payments *service.PaymentService
	verifier auth.Verifier
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users *service.UserService,
	catalog *service.CatalogService,
	payments *service.PaymentService,
	verifier auth.Verifier,
) *Handler {
	return &Handler{
		users:    users,
		catalog:  catalog,
		payments: payments,
		verifier: verifier,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine, clientOrigin string) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{clientOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/users", h.registerUser)

	router.POST("/tuitions", h.createTuition)
	router.GET("/tuitions", h.latestTuitions)
	router.GET("/available-tuitions", h.listTuitions)
	router.GET("/tuitions/:id", h.getTuition)
	router.PUT("/tuitions/:id", h.updateTuition)
	router.DELETE("/tuitions/:id", h.deleteTuition)

	router.POST("/tutors", h.createTutor)
	router.GET("/tutors", h.latestTutors)
	router.GET("/available-tutors", h.listTutors)
	router.GET("/tutors/:id", h.getTutor)

	router.POST("/create-checkout-session", h.createCheckoutSession)
	router.POST("/payment-success", h.confirmPayment)

	router.GET("/orders", RequireAuth(h.verifier), h.listMyOrders)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// registerUser handles user signup with email deduplication
func (h *Handler) registerUser(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, created, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to register user",
			"details": err.Error(),
		})
		return
	}

	if !created {
		c.JSON(http.StatusConflict, gin.H{
			"message": "user already exists",
			"user":    user,
		})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// createTuition handles tuition posting creation
func (h *Handler) createTuition(c *gin.Context) {
	var tuition models.Tuition
	if err := c.ShouldBindJSON(&tuition); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.catalog.CreateTuition(c.Request.Context(), &tuition); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create tuition",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, tuition)
}

// latestTuitions returns the newest postings
func (h *Handler) latestTuitions(c *gin.Context) {
	tuitions, err := h.catalog.LatestTuitions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list tuitions",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, tuitions)
}

// listTuitions returns all postings
func (h *Handler) listTuitions(c *gin.Context) {
	tuitions, err := h.catalog.ListTuitions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list tuitions",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, tuitions)
}

// getTuition returns one posting by id
func (h *Handler) getTuition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	tuition, err := h.catalog.GetTuition(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tuition not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get tuition",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, tuition)
}

// updateTuition replaces the mutable fields of a posting
func (h *Handler) updateTuition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var tuition models.Tuition
	if err := c.ShouldBindJSON(&tuition); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	err := h.catalog.UpdateTuition(c.Request.Context(), id, &tuition)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tuition not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update tuition",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// deleteTuition removes a posting
func (h *Handler) deleteTuition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := h.catalog.DeleteTuition(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tuition not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete tuition",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// createTutor handles tutor profile creation
func (h *Handler) createTutor(c *gin.Context) {
	var tutor models.Tutor
	if err := c.ShouldBindJSON(&tutor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.catalog.CreateTutor(c.Request.Context(), &tutor); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create tutor",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, tutor)
}

// latestTutors returns the newest tutor profiles
func (h *Handler) latestTutors(c *gin.Context) {
	tutors, err := h.catalog.LatestTutors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list tutors",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, tutors)
}

// listTutors returns all tutor profiles
func (h *Handler) listTutors(c *gin.Context) {
	tutors, err := h.catalog.ListTutors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list tutors",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, tutors)
}

// getTutor returns one tutor profile by id
func (h *Handler) getTutor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	tutor, err := h.catalog.GetTutor(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tutor not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get tutor",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, tutor)
}

// createCheckoutSession starts a payment
func (h *Handler) createCheckoutSession(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.payments.CreateCheckoutSession(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to create checkout session",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// confirmPayment reconciles a completed checkout session into an order
func (h *Handler) confirmPayment(c *gin.Context) {
	var req service.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := h.payments.ConfirmPayment(c.Request.Context(), req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Payment confirmation failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(confirmStatus(result.Outcome), result)
}

// listMyOrders returns the authenticated student's orders
func (h *Handler) listMyOrders(c *gin.Context) {
	email := PrincipalEmail(c)
	orders, err := h.payments.ListStudentOrders(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list orders",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func confirmStatus(outcome string) int {
	switch outcome {
	case service.OutcomeCreated:
		return http.StatusCreated
	case service.OutcomeAlreadyProcessed:
		return http.StatusOK
	case service.OutcomeNotCompleted:
		return http.StatusConflict
	case service.OutcomeInvalidReference:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

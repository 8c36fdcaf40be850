// Package server exposes the chat pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shop-chatbot/internal/chatbot"
	"shop-chatbot/internal/common/config"
	"shop-chatbot/internal/common/errors"
	"shop-chatbot/internal/common/logger"
	"shop-chatbot/internal/common/validation"
	"shop-chatbot/internal/models"
)

const maxBodyBytes = 64 * 1024

// Server is the HTTP front end for the chat engine.
type Server struct {
	engine *chatbot.Engine
	log    logger.Logger
	http   *http.Server
}

func New(cfg config.ServerConfig, engine *chatbot.Engine, log logger.Logger) *Server {
	s := &Server{engine: engine, log: log}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.accessLog())

	router.POST("/api/chatbot", s.handleChat)
	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
	return s
}

// Router returns the handler, for tests driving the server in-process.
func (s *Server) Router() http.Handler {
	return s.http.Handler
}

// Start blocks serving HTTP until the listener closes.
func (s *Server) Start() error {
	s.log.Info("http server listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		s.reject(c, "Invalid request body")
		return
	}

	result, err := validation.ValidateChatRequest(body)
	if err != nil || !result.Valid {
		msg := "Invalid request body"
		if err == nil {
			msg = result.ErrorSummary()
		}
		s.reject(c, msg)
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.reject(c, "Invalid request body")
		return
	}

	caller := callerFrom(c)
	reply, err := s.engine.Answer(c.Request.Context(), req.Message, caller)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.FailureReply("Sorry, something went wrong. Please try again later."))
		return
	}
	c.JSON(http.StatusOK, reply)
}

// reject answers a malformed request with 400 and logs the validation
// error with its code.
func (s *Server) reject(c *gin.Context, msg string) {
	verr := errors.NewInvalidRequestError(msg)
	s.log.Warn("request rejected", map[string]interface{}{
		"code":       string(verr.Code),
		"detail":     verr.Details,
		"request_id": c.GetString("request_id"),
	})
	c.JSON(http.StatusBadRequest, models.FailureReply(msg))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// callerFrom resolves identity from the gateway-injected headers. Missing
// or malformed headers degrade to anonymous.
func callerFrom(c *gin.Context) models.CallerIdentity {
	userID, _ := strconv.ParseInt(c.GetHeader("X-User-Id"), 10, 64)
	if userID < 0 {
		userID = 0
	}

	role := models.RoleAnonymous
	switch c.GetHeader("X-User-Role") {
	case "admin":
		role = models.RoleAdmin
	case "customer":
		role = models.RoleCustomer
	default:
		if userID > 0 {
			role = models.RoleCustomer
		}
	}
	return models.CallerIdentity{Role: role, UserID: userID}
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request handled", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetString("request_id"),
		})
	}
}

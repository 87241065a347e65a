package api

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/form"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/monitoring"
)

// Options configures the HTTP surface
type Options struct {
	Defaults       form.Fields
	CORSOrigins    []string
	MetricsEnabled bool
	MetricsPath    string
}

// Server serves the calculator over HTTP
type Server struct {
	logger  *zap.Logger
	calc    *calculator.Calculator
	health  *monitoring.HealthChecker
	options Options
}

// NewServer creates a new HTTP server
func NewServer(logger *zap.Logger, calc *calculator.Calculator, health *monitoring.HealthChecker, options Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if health == nil {
		health = monitoring.NewHealthChecker(false)
	}
	if options.MetricsPath == "" {
		options.MetricsPath = "/metrics"
	}
	return &Server{
		logger:  logger,
		calc:    calc,
		health:  health,
		options: options,
	}
}

// Router creates the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	registerJSONTagNames()

	router := gin.New()

	router.Use(ginzap.Ginzap(s.logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(s.logger, true))
	router.Use(cors.New(s.corsConfig()))

	api := router.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.POST("/calculate", s.calculate)
			v1.GET("/defaults", s.defaults)
			v1.GET("/health", gin.WrapH(s.health))
		}
	}

	if s.options.MetricsEnabled {
		router.GET(s.options.MetricsPath, gin.WrapH(monitoring.NewMetricsHandler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	origins := s.options.CORSOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// registerJSONTagNames makes validation errors report JSON field names
func registerJSONTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

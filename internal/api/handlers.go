package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
	calcerrors "github.com/ducminhle1904/crypto-risk-calculator/internal/errors"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/form"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/monitoring"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/risk"
	"github.com/ducminhle1904/crypto-risk-calculator/pkg/reporting"
)

// calculateRequest is the typed request body
type calculateRequest struct {
	AccountSize      float64 `json:"account_size" binding:"required,gt=0"`
	RiskPercent      float64 `json:"risk_percent" binding:"required,gt=0"`
	MaxMarginPercent float64 `json:"max_margin_percent" binding:"required,gt=0"`
	MaxLeverage      int     `json:"max_leverage" binding:"required,gte=1"`
	EntryPrice       float64 `json:"entry_price" binding:"required,gt=0"`
	SLPrice          float64 `json:"sl_price" binding:"required,gt=0"`
	Symbol           string  `json:"symbol" binding:"omitempty,max=32"`
}

// formRequest carries the raw text of each field, exactly as typed
type formRequest struct {
	form.Fields
	Symbol string `json:"symbol" form:"symbol" binding:"omitempty,max=32"`
}

type errorResponse struct {
	Error  string   `json:"error"`
	Field  string   `json:"field,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// calculate handles POST /api/v1/calculate. ?mode=form accepts raw strings.
func (s *Server) calculate(c *gin.Context) {
	var (
		calc *calculator.Calculation
		err  error
	)

	if c.Query("mode") == "form" {
		var req formRequest
		if err := c.ShouldBind(&req); err != nil {
			s.writeBindError(c, err)
			return
		}
		calc, err = s.calc.CalculateFields(c.Request.Context(), req.Symbol, req.Fields)
	} else {
		var req calculateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeBindError(c, err)
			return
		}
		calc, err = s.calc.Calculate(c.Request.Context(), calculator.Request{
			Input: risk.Input{
				AccountSize:      req.AccountSize,
				RiskPercent:      req.RiskPercent,
				MaxMarginPercent: req.MaxMarginPercent,
				MaxLeverage:      req.MaxLeverage,
				EntryPrice:       req.EntryPrice,
				SLPrice:          req.SLPrice,
			},
			Symbol: req.Symbol,
		})
	}

	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, reporting.NewReport(calc))
}

// defaults handles GET /api/v1/defaults
func (s *Server) defaults(c *gin.Context) {
	c.JSON(http.StatusOK, s.options.Defaults)
}

func (s *Server) writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		resp := errorResponse{Error: "validation failed"}
		for _, fe := range verrs {
			resp.Fields = append(resp.Fields, fe.Field())
		}
		resp.Field = resp.Fields[0]
		resp.Error = "invalid " + resp.Field + ": failed " + verrs[0].Tag() + " check"
		monitoring.RecordRejected(resp.Field)
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	monitoring.RecordError("malformed_request")
	c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body: " + err.Error()})
}

// writeError writes a JSON error response with the status of its category
func (s *Server) writeError(c *gin.Context, err error) {
	calcErr := calcerrors.Categorize(err, "api", "calculate")
	status := calcErr.HTTPStatus()

	resp := errorResponse{Error: err.Error()}
	if field, ok := calcErr.Context["field"].(string); ok {
		resp.Field = field
	}
	for _, e := range unwrapAll(err) {
		var invalid *risk.InvalidInputError
		if errors.As(e, &invalid) {
			resp.Fields = append(resp.Fields, invalid.Field)
		}
	}

	if status >= http.StatusInternalServerError {
		monitoring.RecordError(strings.ToLower(string(calcErr.Category)))
		s.logger.Error("calculation failed",
			zap.String("category", string(calcErr.Category)),
			zap.Error(err))
	}
	c.JSON(status, resp)
}

// unwrapAll flattens an errors.Join tree one level
func unwrapAll(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

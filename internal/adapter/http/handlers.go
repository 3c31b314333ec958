package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Check is one dependency pinged by Health.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct{ checks []Check }

func NewHandler(checks ...Check) *Handler { return &Handler{checks: checks} }

// Health reports "ok" only when every check answers; the failing ones are
// named in checks and the status becomes 503.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	code, status := http.StatusOK, "ok"
	checks := make(map[string]string, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Ping(ctx); err != nil {
			checks[chk.Name] = err.Error()
			code, status = http.StatusServiceUnavailable, "degraded"
			continue
		}
		checks[chk.Name] = "ok"
	}
	body := map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	return c.JSON(code, body)
}

// Routes wires every handler onto e. Mutating routes go through mw.
func Routes(e *echo.Echo, h *Handler, wh *WorldHandler, bh *BankHandler, lh *LoanHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health)

	g := e.Group("", mw...)
	g.POST("/worlds", wh.CreateWorld)
	g.GET("/worlds/:world_id", wh.GetWorld)
	g.POST("/worlds/:world_id/evaluate", wh.Evaluate)
	g.POST("/worlds/:world_id/resume", wh.Resume)

	g.POST("/banks/:bank_id/transfers", bh.Transfer)
	g.POST("/banks/:bank_id/loans", bh.RequestLoan)
	g.POST("/loans/:loan_id/payments", bh.MakePayment)

	g.POST("/loans", lh.CreateLoan)
	g.GET("/loans/:loan_id", lh.GetLoan)
	g.GET("/loans/:loan_id/schedule", lh.Schedule)
	g.PATCH("/loans/:loan_id", lh.UpdateTerms)
	g.POST("/loans/:loan_id/reset", lh.ResetPayments)
}

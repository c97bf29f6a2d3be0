// Package health builds the JSON health report served by every deployable.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StatusHealthy = "healthy"

	DefaultEnvironment = "production"
	UnknownInstance    = "unknown"
)

// Report is the body of a health response.
type Report struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment,omitempty"`
	Instance    string `json:"instance,omitempty"`
}

// InstanceResolver names the host serving the report.
type InstanceResolver interface {
	InstanceID(ctx context.Context) (string, error)
}

// Checker produces health reports.
type Checker struct {
	environment string
	instance    InstanceResolver
	now         func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithEnvironment sets the reported environment; empty means "production".
func WithEnvironment(env string) Option {
	return func(c *Checker) {
		if env != "" {
			c.environment = env
		}
	}
}

// WithInstance adds an instance id to the report.
func WithInstance(r InstanceResolver) Option {
	return func(c *Checker) { c.instance = r }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// NewChecker returns a Checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{environment: DefaultEnvironment, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Report assembles a report. It never fails: an instance id that cannot be
// resolved is reported as "unknown".
func (c *Checker) Report(ctx context.Context) Report {
	r := Report{
		Status:      StatusHealthy,
		Timestamp:   c.now().UTC().Format(time.RFC3339Nano),
		Environment: c.environment,
	}
	if c.instance != nil {
		id, err := c.instance.InstanceID(ctx)
		if err != nil || id == "" {
			id = UnknownInstance
		}
		r.Instance = id
	}
	return r
}

// GinHandler serves the report on a gin route.
func (c *Checker) GinHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, c.Report(ctx.Request.Context()))
	}
}

// ServeHTTP serves the report to plain net/http servers.
func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(c.Report(r.Context()))
}

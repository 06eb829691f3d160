package brapi

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultEndpoint is the public BrAPI v1 test server.
const DefaultEndpoint = "https://test-server.brapi.org/brapi/v1/"

// Config holds everything the client needs to talk to a BrAPI server.
type Config struct {
	// Endpoint is the base URL of the BrAPI v1 API, e.g.
	// https://test-server.brapi.org/brapi/v1/
	Endpoint string

	// PageSize is the number of records requested per page.
	PageSize int

	// MaxRetries bounds the number of retries of a request answered with a
	// transient status (429, 502, 503, 504) or failing to connect.
	MaxRetries int

	// Timeout applies to each HTTP request. Zero means no timeout.
	Timeout time.Duration

	// SearchObservationUnits makes the client use the POST search endpoint
	// for observation units instead of the per-study listing.
	SearchObservationUnits bool
}

// NewConfig gets a Config with the default values.
func NewConfig() Config {
	return Config{
		Endpoint:   DefaultEndpoint,
		PageSize:   1000,
		MaxRetries: 5,
		Timeout:    time.Minute,
	}
}

func (c Config) validate() (Config, error) {
	if c.Endpoint == "" {
		return c, errors.New("no endpoint configured")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return c, errors.Wrapf(err, "parsing endpoint '%s'", c.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return c, errors.Errorf("endpoint '%s' is not an http(s) URL", c.Endpoint)
	}
	if !strings.HasSuffix(c.Endpoint, "/") {
		c.Endpoint += "/"
	}
	if c.PageSize <= 0 {
		return c, errors.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.MaxRetries < 0 {
		return c, errors.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	return c, nil
}

package gateway

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/infra"
)

func testLogger() *infra.Logger {
	l := infra.Logger(zerolog.New(io.Discard))
	return &l
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// staticResolver returns a fixed secret for every provider.
type staticResolver struct {
	secret string
}

func (s staticResolver) Resolve(context.Context, ProviderDescriptor) (string, error) {
	if s.secret == "" {
		return "", ErrMissingCredential
	}
	return s.secret, nil
}

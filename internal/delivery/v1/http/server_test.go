package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/internal/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_UsesHTTPConfig(t *testing.T) {
	srv := NewServer(http.NotFoundHandler(), &cfg.HTTPConfig{
		Port:         "3001",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  65 * time.Second,
	})

	hs := srv.httpServer
	assert.Equal(t, ":3001", hs.Addr)
	assert.Equal(t, 5*time.Second, hs.ReadTimeout)
	assert.Equal(t, 5*time.Second, hs.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, hs.WriteTimeout)
	assert.Equal(t, 65*time.Second, hs.IdleTimeout)
	assert.Equal(t, maxHeaderBytes, hs.MaxHeaderBytes)
}

func TestServer_StopBeforeRun(t *testing.T) {
	srv := NewServer(http.NotFoundHandler(), &cfg.HTTPConfig{Port: "0"})

	require.NoError(t, srv.Stop(context.Background()))
	assert.ErrorIs(t, srv.Run(), http.ErrServerClosed)
}

package api

import (
	"net/http"
	"testing"

	"github.com/angelmondragon/cinecart/pkg/config"
)

func TestListenAddrPrefersPORT(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Port: "8080"}}

	t.Setenv("PORT", "")
	if got := ListenAddr(cfg); got != ":8080" {
		t.Fatalf("expected :8080, got %s", got)
	}

	t.Setenv("PORT", "5000")
	if got := ListenAddr(cfg); got != ":5000" {
		t.Fatalf("expected :5000, got %s", got)
	}
}

func TestNewServerSetsTimeouts(t *testing.T) {
	srv := NewServer(&config.Config{App: config.AppConfig{Port: "9090"}}, http.NotFoundHandler())
	if srv.ReadHeaderTimeout == 0 || srv.WriteTimeout == 0 || srv.IdleTimeout == 0 {
		t.Fatalf("expected timeouts to be set, got %+v", srv)
	}
}

package ingest

import (
	"net"
	"net/http"
	"testing"
)

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		if !retryableStatus(code) {
			t.Errorf("retryableStatus(%d) = false, want true", code)
		}
	}
	for _, code := range []int{http.StatusOK, http.StatusNotFound, http.StatusForbidden, http.StatusMovedPermanently} {
		if retryableStatus(code) {
			t.Errorf("retryableStatus(%d) = true, want false", code)
		}
	}
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{"127.0.0.1", "10.1.2.3", "192.168.0.10", "172.16.5.5", "169.254.1.1", "0.0.0.0", "::1"}
	for _, s := range private {
		if !isPrivateIP(net.ParseIP(s)) {
			t.Errorf("isPrivateIP(%s) = false, want true", s)
		}
	}
	public := []string{"8.8.8.8", "185.11.24.1", "2001:4860:4860::8888"}
	for _, s := range public {
		if isPrivateIP(net.ParseIP(s)) {
			t.Errorf("isPrivateIP(%s) = true, want false", s)
		}
	}
	if !isPrivateIP(nil) {
		t.Error("isPrivateIP(nil) = false, want true")
	}
}

func TestNewPoliteFetcherDefaults(t *testing.T) {
	f := NewPoliteFetcher(FetchConfig{})
	if f.config.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d", f.config.TimeoutSeconds)
	}
	if f.config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d", f.config.MaxRetries)
	}
	if f.config.RateLimitRPS != 1.0 {
		t.Errorf("RateLimitRPS = %v", f.config.RateLimitRPS)
	}
	if f.config.AcceptLanguage == "" {
		t.Error("AcceptLanguage not defaulted")
	}
}

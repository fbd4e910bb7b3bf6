package network

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quenio/agerun/pkg/data"
)

func newMessage(action, url, body string) *data.MapValue {
	m := data.NewMap()
	m.SetString("action", action)
	m.SetString("url", url)
	if body != "" {
		m.SetString("body", body)
	}
	return m
}

func TestHandle_EmptyWhitelistAllowsAnyURL(t *testing.T) {
	h := New(Config{})
	resp := h.Handle(newMessage("GET", "https://example.com", ""), 1)
	assert.Equal(t, "success", resp.GetString("status"))
	assert.Equal(t, int64(1), resp.GetInteger("stubbed"))
	assert.NotEmpty(t, resp.GetString("request_id"))
}

func TestHandle_RejectsNonWhitelistedURL(t *testing.T) {
	h := New(Config{Whitelist: []string{"https://allowed.com"}})
	resp := h.Handle(newMessage("GET", "https://other.com", ""), 1)
	assert.Equal(t, "error", resp.GetString("status"))
	assert.Equal(t, "URL not whitelisted", resp.GetString("message"))
}

func TestHandle_PostRequiresBody(t *testing.T) {
	h := New(Config{})
	resp := h.Handle(newMessage("POST", "https://example.com", ""), 1)
	assert.Equal(t, "error", resp.GetString("status"))
	assert.Equal(t, "Missing body", resp.GetString("message"))
}

func TestHandle_UnknownAction(t *testing.T) {
	h := New(Config{})
	resp := h.Handle(newMessage("DELETE", "https://example.com", ""), 1)
	assert.Equal(t, "error", resp.GetString("status"))
}

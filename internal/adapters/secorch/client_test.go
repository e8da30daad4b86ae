package secorch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfvsec/nmtd/internal/core/domain"
)

func TestSendMSPL(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/meservice", r.URL.Path)
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		got, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	body := []byte(`<mspl><policy type="firewall"/></mspl>`)
	require.NoError(t, client.SendMSPL(context.Background(), body))
	assert.Equal(t, body, got)
}

func TestSendMSPL_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad policy", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).SendMSPL(context.Background(), []byte("<mspl/>"))

	var syncErr *domain.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, domain.SyncRejected, syncErr.Kind)
}

func TestSendMSPL_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(url).SendMSPL(context.Background(), []byte("<mspl/>"))

	var syncErr *domain.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, domain.SyncUnreachable, syncErr.Kind)
}

package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
)

func TestTriggerSyncRelaysAck(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Workflow was started"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	ack, err := client.TriggerSync(context.Background(), map[string]string{"source": "back-office"})
	require.NoError(t, err)
	assert.Equal(t, "Workflow was started", ack.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTriggerSyncRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"message":"Workflow was started"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second, WithMaxRetries(5))
	require.NoError(t, err)

	ack, err := client.TriggerSync(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Workflow was started", ack.Message)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTriggerSyncStopsOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad token"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second, WithMaxRetries(5))
	require.NoError(t, err)

	_, err = client.TriggerSync(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTriggerSyncRejectsUnexpectedAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"queued"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second, WithMaxRetries(1))
	require.NoError(t, err)

	_, err = client.TriggerSync(context.Background(), nil)
	require.Error(t, err)

	// The typed error prints only code and message; the ack mismatch
	// lives in the cause chain.
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
	assert.ErrorContains(t, typed.Unwrap(), "unexpected webhook ack")
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient("  ", time.Second)
	require.Error(t, err)
}

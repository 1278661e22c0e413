package eilog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gw2_isac/cache"
	"gw2_isac/share"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	share.RetryDelay = 10 * time.Millisecond
}

func TestExtractPermalinks(t *testing.T) {
	text := "logs: https://dps.report/abcd-20240301-200000_vg https://b.dps.report/xyz-1_gors\n" +
		"again https://dps.report/abcd-20240301-200000_vg and http://dps.report/nope https://example.com/x"

	assert.Equal(t,
		[]string{"https://dps.report/abcd-20240301-200000_vg", "https://b.dps.report/xyz-1_gors"},
		ExtractPermalinks(text),
	)
	assert.Empty(t, ExtractPermalinks("nothing here"))
}

func TestValidatePermalink(t *testing.T) {
	assert.NoError(t, ValidatePermalink("https://a.dps.report/abc-1_vg"))
	assert.ErrorIs(t, ValidatePermalink("https://dps.report/abc?x=1"), ErrInvalidPermalink)
	assert.ErrorIs(t, ValidatePermalink("see https://dps.report/abc"), ErrInvalidPermalink)
}

func TestFetchCachesResult(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/getJson", r.URL.Path)
		assert.Equal(t, "https://dps.report/abc-1_vg", r.URL.Query().Get("permalink"))
		w.Write([]byte(sampleLog))
	}))
	defer srv.Close()

	storage, err := cache.New(filepath.Join(t.TempDir(), "logs"), SchemaVersion)
	require.NoError(t, err)

	c := NewClient(srv.URL, srv.Client(), storage, time.Millisecond)

	l, err := c.Fetch(context.Background(), "https://dps.report/abc-1_vg")
	require.NoError(t, err)
	assert.Equal(t, "Deimos", l.Name())

	l, err = c.Fetch(context.Background(), "https://dps.report/abc-1_vg")
	require.NoError(t, err)
	assert.Equal(t, "Deimos", l.Name())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(sampleLog))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil, time.Millisecond)

	_, err := c.Fetch(context.Background(), "https://dps.report/abc-1_vg")
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil, time.Millisecond)

	_, err := c.Fetch(context.Background(), "https://dps.report/abc-1_vg")
	var se *share.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchRejectsBadLink(t *testing.T) {
	c := NewClient("http://unused", http.DefaultClient, nil, time.Millisecond)

	_, err := c.Fetch(context.Background(), "https://example.com/abc")
	assert.ErrorIs(t, err, ErrInvalidPermalink)
}

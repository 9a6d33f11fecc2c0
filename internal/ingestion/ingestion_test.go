package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const featurePage = `<!DOCTYPE html>
<html>
<head><title>Instant Payouts</title><script>console.log("x")</script></head>
<body>
<nav>Home | Products | About</nav>
<main>
  <h1>Instant Payouts</h1>
  <p>Enable   instant payouts for SMB customers over RTP rails.</p>


  <p>Funds settle in seconds and are subject to fraud screening before release.</p>
</main>
<footer>Copyright 2026</footer>
</body>
</html>`

func TestExtractMainText(t *testing.T) {
	text, err := ExtractMainText(featurePage)
	require.NoError(t, err)

	assert.Contains(t, text, "Instant Payouts")
	assert.Contains(t, text, "fraud screening")

	// Noise elements are stripped.
	assert.NotContains(t, text, "Home | Products")
	assert.NotContains(t, text, "Copyright 2026")
	assert.NotContains(t, text, "console.log")
}

func TestExtractMainText_FallsBackToBody(t *testing.T) {
	text, err := ExtractMainText(`<html><body><p>bare body content</p></body></html>`)
	require.NoError(t, err)
	assert.Contains(t, text, "bare body content")
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf normalized", "a\r\nb\rc", "a\nb\nc"},
		{"inner spaces collapsed", "a   b\tc", "a b c"},
		{"blank runs collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"surrounding whitespace trimmed", "  \n a \n  ", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestIngestFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(featurePage))
	}))
	defer srv.Close()

	text, err := IngestFromURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Enable instant payouts for SMB customers over RTP rails.")
	assert.False(t, strings.Contains(text, "  "), "no double spaces after cleaning")
}

func TestIngestFromURL_Errors(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		_, err := IngestFromURL(context.Background(), "not a url")
		var ingErr *Error
		assert.ErrorAs(t, err, &ingErr)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := IngestFromURL(context.Background(), "ftp://example.com/spec")
		var ingErr *Error
		assert.ErrorAs(t, err, &ingErr)
	})

	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := IngestFromURL(context.Background(), srv.URL)
		var ingErr *Error
		require.ErrorAs(t, err, &ingErr)
		assert.Contains(t, ingErr.Message, "404")
	})

	t.Run("too little content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><body><p>tiny</p></body></html>`))
		}))
		defer srv.Close()

		_, err := IngestFromURL(context.Background(), srv.URL)
		var ingErr *Error
		assert.ErrorAs(t, err, &ingErr)
	})
}

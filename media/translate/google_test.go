package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponseJoinsSegments(t *testing.T) {
	body := []byte(`[[["Hello, ","Bonjour, ",null,null,1],["world!","le monde!",null,null,1]],null,"fr"]`)
	out, err := parseResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", out)
}

func TestParseResponseRejectsGarbage(t *testing.T) {
	_, err := parseResponse([]byte(`{"not": "an array"}`))
	assert.Error(t, err)

	_, err = parseResponse([]byte(`[]`))
	assert.Error(t, err)
}

func TestToEnglish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gtx", r.URL.Query().Get("client"))
		assert.Equal(t, "auto", r.URL.Query().Get("sl"))
		assert.Equal(t, "en", r.URL.Query().Get("tl"))
		assert.Equal(t, "bonjour", r.URL.Query().Get("q"))
		w.Write([]byte(`[[["hello","bonjour",null,null,1]],null,"fr"]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	out, err := c.ToEnglish(context.Background(), "bonjour")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestToEnglishNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	_, err := c.ToEnglish(context.Background(), "bonjour")
	assert.Error(t, err)
}

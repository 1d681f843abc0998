package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	require.False(t, NewService("", nil, false).Enabled())
	require.True(t, NewService("http://chat.internal", nil, false).Enabled())
}

func TestForwardPassesBodyThrough(t *testing.T) {
	var got []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		got, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	}))
	defer upstream.Close()

	// Trailing slash on the configured URL must not produce a double slash.
	svc := NewService(upstream.URL+"/", nil, false)

	relay, err := svc.Forward(context.Background(), []byte(`{"message":"hello"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, relay.Status)
	require.Equal(t, "application/json", relay.ContentType)
	require.JSONEq(t, `{"answer":"ok"}`, string(relay.Body))
	require.JSONEq(t, `{"message":"hello"}`, string(got))
}

func TestForwardDefaultsContentType(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	relay, err := NewService(upstream.URL, nil, false).Forward(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, relay.Status)
	require.Equal(t, "text/plain; charset=utf-8", relay.ContentType)
}

func TestAnswerWithoutGemini(t *testing.T) {
	svc := NewService("", nil, false)
	_, err := svc.Answer(context.Background(), Request{Message: "hi"})
	require.Error(t, err)
}

func TestDecodeContext(t *testing.T) {
	list := json.RawMessage(`[{"title":"A","url":"https://x/a"},{"title":"B","url":"https://x/b"}]`)
	items := decodeContext(list)
	require.Len(t, items, 2)
	require.Equal(t, "A", items[0].Title)

	single := json.RawMessage(`{"title":"Solo","url":"https://x/solo","source":"Wire"}`)
	items = decodeContext(single)
	require.Len(t, items, 1)
	require.Equal(t, "Solo", items[0].Title)
	require.Equal(t, "Wire", items[0].Source)

	require.Nil(t, decodeContext(nil))
	require.Nil(t, decodeContext(json.RawMessage(`"just a string"`)))
	require.Nil(t, decodeContext(json.RawMessage(`{}`)))
}

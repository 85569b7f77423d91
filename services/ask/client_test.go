package ask

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistkit/session"
)

func TestAskSendsContractAndParsesReply(t *testing.T) {
	var gotBody Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ask", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"risposta":"Il CUP risponde al numero 045 807 1111","intent":"contatti","suggerimenti":["Quali sono gli orari del CUP?"],"tempo_risposta":0.42,"cached":true}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, nil)
	history := []session.Turn{{UserText: "ciao", AssistantText: "salve", Timestamp: "2025-01-01T10:00:00Z"}}

	reply, err := client.Ask(context.Background(), "Come contatto il CUP?", history, "session_1_abc")
	require.NoError(t, err)

	assert.Equal(t, "Come contatto il CUP?", gotBody.Question)
	assert.Equal(t, "session_1_abc", gotBody.SessionId)
	require.Len(t, gotBody.History, 1)
	assert.Equal(t, "ciao", gotBody.History[0].UserText)

	assert.Equal(t, "Il CUP risponde al numero 045 807 1111", reply.Risposta)
	assert.Equal(t, "contatti", reply.Intent)
	assert.Equal(t, []string{"Quali sono gli orari del CUP?"}, reply.Suggerimenti)
	assert.InDelta(t, 0.42, reply.TempoRisposta, 1e-9)
	assert.True(t, reply.Cached)
}

func TestAskNon2xxIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := client.Ask(context.Background(), "domanda", nil, "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestAskMalformedBodyFailsClosed(t *testing.T) {
	cases := map[string]string{
		"not json":        `<html>oops</html>`,
		"missing risposta": `{"intent":"generale"}`,
		"empty risposta":   `{"risposta":""}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			client := NewClient(Config{BaseURL: srv.URL}, nil)
			_, err := client.Ask(context.Background(), "domanda", nil, "s")
			assert.ErrorIs(t, err, ErrMalformedReply)
		})
	}
}

func TestAskUnreachableEndpoint(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := client.Ask(context.Background(), "domanda", nil, "s")
	assert.Error(t, err)
}

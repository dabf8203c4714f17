package rpc

import (
	"bytes"
	"net/http/httptest"
	"testing"
)

// FuzzSubmitTransaction exercises the transaction-submission endpoint with
// arbitrary request bodies; it must never panic regardless of input shape.
func FuzzSubmitTransaction(f *testing.F) {
	f.Add([]byte(`{"transaction":{"id":"x","inputs":[],"outputs":[]}}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"transaction":null}`))
	f.Add([]byte(`{"transaction":{"inputs":"not-a-list"}}`))

	srv := newTestServer(f)

	f.Fuzz(func(t *testing.T, data []byte) {
		req := httptest.NewRequest("POST", "/v1/transactions", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
	})
}

package middleware

import (
	"encoding/json"
	"testing"

	"github.com/sweetorder/sweetorder-backend/pkg/types"
)

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Success bool           `json:"success"`
		Data    types.APIError `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if payload.Success {
		t.Fatal("expected failure envelope")
	}
	return payload.Data.Code
}

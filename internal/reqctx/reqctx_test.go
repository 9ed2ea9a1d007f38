package reqctx_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ErlanBelekov/secure-login/internal/reqctx"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if got := reqctx.RequestID(ctx); got != "" {
		t.Fatalf("empty context RequestID = %q", got)
	}

	id := reqctx.NewRequestID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewRequestID %q is not a uuid: %v", id, err)
	}

	ctx = reqctx.WithRequestID(ctx, id)
	if got := reqctx.RequestID(ctx); got != id {
		t.Errorf("RequestID = %q, want %q", got, id)
	}
	if got := reqctx.CredentialID(ctx); got != "" {
		t.Errorf("CredentialID = %q, want empty", got)
	}
}

func TestCredentialID(t *testing.T) {
	ctx := reqctx.WithCredentialID(context.Background(), "cred-1")
	if got := reqctx.CredentialID(ctx); got != "cred-1" {
		t.Errorf("CredentialID = %q, want cred-1", got)
	}
}

package trace

import (
	"context"
	"testing"
)

func TestNextSpanIDIncrementsWithinRequest(t *testing.T) {
	ctx := WithRequestAndSpan(context.Background(), "req-1", 0)

	if got := CurrentSpanID(ctx); got != "0" {
		t.Fatalf("expected initial span 0, got %q", got)
	}
	for _, want := range []string{"1", "2", "3"} {
		reqID, span := NextSpanID(ctx)
		if reqID != "req-1" {
			t.Fatalf("expected request id req-1, got %q", reqID)
		}
		if span != want {
			t.Fatalf("expected span %s, got %s", want, span)
		}
	}
	if got := CurrentSpanID(ctx); got != "3" {
		t.Fatalf("expected current span 3, got %q", got)
	}
}

func TestNextSpanIDWithoutTraceContext(t *testing.T) {
	reqID, span := NextSpanID(context.Background())
	if reqID == "" {
		t.Fatalf("expected generated request id")
	}
	if span != "1" {
		t.Fatalf("expected span 1, got %q", span)
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Fatalf("expected empty request id for bare context")
	}
}

func TestWithNewRequestGeneratesDistinctIDs(t *testing.T) {
	a := RequestIDFromContext(WithNewRequest(context.Background()))
	b := RequestIDFromContext(WithNewRequest(context.Background()))
	if a == "" || b == "" || a == b {
		t.Fatalf("expected two distinct ids, got %q and %q", a, b)
	}
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/notaprep/notaprep/internal/respcache"
)

func TestCache_HitSkipsProvider(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`first`)},
		MockResponse{Content: json.RawMessage(`second`)},
	)
	p := WithCache(mock, respcache.NewMemory(0), time.Hour)

	req := Request{Messages: []Message{{Role: RoleUser, Content: "hello"}}}

	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Cached {
		t.Fatal("first call should not be cached")
	}

	resp, err = p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Cached {
		t.Fatal("second call should be a cache hit")
	}
	if string(resp.Content) != `first` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 provider call, got %d", mock.CallCount())
	}
}

func TestCache_DifferentRequestsMiss(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`first`)},
		MockResponse{Content: json.RawMessage(`second`)},
	)
	p := WithCache(mock, respcache.NewMemory(0), time.Hour)

	if _, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "one"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "two"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 provider calls, got %d", mock.CallCount())
	}
}

func TestCache_StaleServedOnThrottle(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`answer`)},
		MockResponse{Err: &ErrThrottled{Scope: "mock", RetryAfter: time.Minute}},
	)
	mem := respcache.NewMemory(0)
	p := WithCache(mock, mem, time.Hour)

	req := Request{Messages: []Message{{Role: RoleUser, Content: "q"}}}

	if _, err := p.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Expire everything, then throttle the refresh: the expired entry is
	// still served as a stale fallback.
	mem.ExpireAll()

	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if !resp.Stale || !resp.Cached {
		t.Fatalf("expected stale cached response, got Stale=%v Cached=%v", resp.Stale, resp.Cached)
	}
	if string(resp.Content) != `answer` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
}

func TestCache_NoStaleForInvalidResponse(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`answer`)},
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad json")}},
	)
	mem := respcache.NewMemory(0)
	p := WithCache(mock, mem, time.Hour)

	req := Request{Messages: []Message{{Role: RoleUser, Content: "q"}}}

	if _, err := p.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mem.ExpireAll()

	_, err := p.Generate(context.Background(), req)
	var invResp *ErrInvalidResponse
	if !errors.As(err, &invResp) {
		t.Fatalf("expected ErrInvalidResponse, got: %v", err)
	}
}

func TestCache_ErrorNotCached(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Content: json.RawMessage(`ok`)},
	)
	p := WithCache(mock, respcache.NewMemory(0), time.Hour)

	req := Request{Messages: []Message{{Role: RoleUser, Content: "q"}}}

	if _, err := p.Generate(context.Background(), req); err == nil {
		t.Fatal("expected error")
	}
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Cached {
		t.Fatal("failed call must not populate the cache")
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 provider calls, got %d", mock.CallCount())
	}
}

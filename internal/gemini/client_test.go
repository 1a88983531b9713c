package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeGenerator struct {
	reply   *generationReply
	err     error
	lastReq generationRequest
}

func (f *fakeGenerator) generate(_ context.Context, req generationRequest) (*generationReply, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func testClient(gen contentGenerator, windowDays int) *Client {
	c := newClient(gen, windowDays)
	c.clock = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return c
}

func TestDiscoverEventsParsesReply(t *testing.T) {
	gen := &fakeGenerator{reply: &generationReply{
		Text: `{"events":[{"id":"e1","title":"Rooftop Rave","category":"Party","date":"Tonight","isoDate":"2024-06-01T22:00:00Z","location":"Belleville","description":"techno","vibe":"Techno Vibe"}]}`,
		Chunks: []groundingChunk{
			{Title: "Venue page", URI: "https://example.com/venue"},
			{Title: "no link chunk", URI: ""},
			{Title: "", URI: "https://example.com/listing"},
		},
	}}

	result, err := testClient(gen, 14).Discover(context.Background(), "rooftop party")
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(result.Events) != 1 || result.Events[0].ID != "e1" {
		t.Fatalf("unexpected events: %+v", result.Events)
	}

	if len(result.Sources) != 2 {
		t.Fatalf("expected chunk without uri to be dropped, got %+v", result.Sources)
	}
	if result.Sources[1].Title != "View Source" {
		t.Fatalf("expected placeholder title, got %q", result.Sources[1].Title)
	}

	if !gen.lastReq.WantEvents || !gen.lastReq.UseSearch {
		t.Fatal("discovery must request structured events with search grounding")
	}
}

func TestDiscoverEventsProseReplyDegradesToEmpty(t *testing.T) {
	gen := &fakeGenerator{reply: &generationReply{Text: "Sorry, I can't help with that."}}

	result, err := testClient(gen, 14).Discover(context.Background(), "anything")
	if err != nil {
		t.Fatalf("parse failure must not surface as an error, got %v", err)
	}
	if len(result.Events) != 0 || len(result.Sources) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if result.Events == nil || result.Sources == nil {
		t.Fatal("empty result must use empty slices, not nil")
	}
}

func TestDiscoverEventsTransportError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("backend unreachable")}

	result, err := testClient(gen, 14).Discover(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected transport error to propagate")
	}
	if result == nil || len(result.Events) != 0 {
		t.Fatalf("expected empty non-nil result alongside the error, got %+v", result)
	}
}

func TestDiscoverEventsPromptWindowAndDefaultQuery(t *testing.T) {
	gen := &fakeGenerator{reply: &generationReply{Text: `{"events":[]}`}}

	if _, err := testClient(gen, 14).Discover(context.Background(), "   "); err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}

	prompt := gen.lastReq.Prompt
	if !strings.Contains(prompt, "Today is 2024-06-01") {
		t.Fatalf("prompt missing anchor date: %q", prompt)
	}
	if !strings.Contains(prompt, "between 2024-06-01 and 2024-06-15") {
		t.Fatalf("prompt missing 14-day window bound: %q", prompt)
	}
	if !strings.Contains(prompt, DefaultDiscoveryQuery) {
		t.Fatalf("blank query should fall back to the default curation query: %q", prompt)
	}
	for _, want := range []string{"French-language", "Translate", "Safe Bet", "Deep Local"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing curation policy fragment %q: %q", want, prompt)
		}
	}
}

func TestDiscoverEventsDropsTitlelessRows(t *testing.T) {
	gen := &fakeGenerator{reply: &generationReply{
		Text: `{"events":[{"id":"e1","title":"","category":"Party","date":"x","isoDate":"2024-06-02T20:00:00Z","location":"y","description":"z","vibe":"v"},{"id":"e2","title":"Kept","category":"Party","date":"x","isoDate":"2024-06-02T21:00:00Z","location":"y","description":"z","vibe":"v"}]}`,
	}}

	result, err := testClient(gen, 14).Discover(context.Background(), "q")
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(result.Events) != 1 || result.Events[0].ID != "e2" {
		t.Fatalf("expected titleless row dropped, got %+v", result.Events)
	}
}

func TestChatFallbackOnEmptyReply(t *testing.T) {
	gen := &fakeGenerator{reply: &generationReply{Text: "  "}}

	reply, err := testClient(gen, 14).Chat(context.Background(), "bonjour", nil)
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply != "Pardon, I didn't quite catch that." {
		t.Fatalf("unexpected fallback reply %q", reply)
	}
	if gen.lastReq.System == "" || gen.lastReq.WantEvents || gen.lastReq.UseSearch {
		t.Fatal("chat must send the persona without the events schema or search tool")
	}
}

// Package gemini is the AI discovery gateway: it turns a free-text query into
// a normalized event list by prompting a generative backend with web-search
// grounding, then recovering structure from whatever the model replied.
package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/lescale-paris/escale-backend/internal/domain"
)

// generationRequest is the gateway's view of one backend call. The concrete
// backend owns schema wiring and transport details.
type generationRequest struct {
	System     string
	Prompt     string
	History    []domain.ChatTurn
	WantEvents bool
	UseSearch  bool
}

type groundingChunk struct {
	Title string
	URI   string
}

type generationReply struct {
	Text   string
	Chunks []groundingChunk
}

// contentGenerator is the seam between the gateway logic and the Gemini SDK;
// tests install a fake here.
type contentGenerator interface {
	generate(ctx context.Context, req generationRequest) (*generationReply, error)
}

// Client issues discovery and chat calls. Safe for concurrent use.
type Client struct {
	gen        contentGenerator
	windowDays int
	clock      func() time.Time
}

// NewClient dials the Gemini API. model is e.g. "gemini-3-flash-preview".
func NewClient(ctx context.Context, apiKey, model string, windowDays int) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newClient(&sdkGenerator{client: sdk, model: model}, windowDays), nil
}

func newClient(gen contentGenerator, windowDays int) *Client {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Client{gen: gen, windowDays: windowDays, clock: time.Now}
}

// Discover runs one discovery call. Transport failures are returned as
// errors together with an empty (never nil) result; schema mismatches are
// recovered inside the gateway and degrade silently to the empty result.
func (c *Client) Discover(ctx context.Context, query string) (*domain.DiscoveryResult, error) {
	prompt := buildDiscoveryPrompt(query, c.clock().UTC(), c.windowDays)

	reply, err := c.gen.generate(ctx, generationRequest{
		Prompt:     prompt,
		WantEvents: true,
		UseSearch:  true,
	})
	if err != nil {
		return &domain.DiscoveryResult{Events: []domain.EventItem{}, Sources: []domain.GroundingSource{}}, err
	}

	events, ok := parseDiscoveryReply(reply.Text)
	if !ok {
		log.Printf("gemini: discovery reply not parsable as events, degrading to empty result")
		events = nil
	}

	return &domain.DiscoveryResult{
		Events:  normalizeEvents(events),
		Sources: mapSources(reply.Chunks),
	}, nil
}

// Chat answers one assistant turn in the Lili persona.
func (c *Client) Chat(ctx context.Context, message string, history []domain.ChatTurn) (string, error) {
	reply, err := c.gen.generate(ctx, generationRequest{
		System:  assistantPersona,
		Prompt:  message,
		History: history,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply.Text) == "" {
		return "Pardon, I didn't quite catch that.", nil
	}
	return reply.Text, nil
}

func normalizeEvents(events []domain.EventItem) []domain.EventItem {
	out := make([]domain.EventItem, 0, len(events))
	for _, ev := range events {
		if strings.TrimSpace(ev.Title) == "" {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// mapSources keeps chunks with a usable link and fills in the placeholder
// title the UI expects.
func mapSources(chunks []groundingChunk) []domain.GroundingSource {
	sources := make([]domain.GroundingSource, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.URI) == "" {
			continue
		}
		title := chunk.Title
		if strings.TrimSpace(title) == "" {
			title = "View Source"
		}
		sources = append(sources, domain.GroundingSource{Title: title, URI: chunk.URI})
	}
	return sources
}

// sdkGenerator backs the gateway with the official Gemini SDK.
type sdkGenerator struct {
	client *genai.Client
	model  string
}

func (g *sdkGenerator) generate(ctx context.Context, req generationRequest) (*generationReply, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.UseSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if req.WantEvents {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = eventListSchema
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	reply := &generationReply{Text: resp.Text()}
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			reply.Chunks = append(reply.Chunks, groundingChunk{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}
	return reply, nil
}

// eventListSchema constrains the discovery reply to the event envelope.
var eventListSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"events": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":       {Type: genai.TypeString},
					"title":    {Type: genai.TypeString},
					"category": {Type: genai.TypeString},
					"date": {
						Type:        genai.TypeString,
						Description: "Human readable date e.g. 'Tonight at 10 PM'",
					},
					"isoDate": {
						Type:        genai.TypeString,
						Description: "ISO 8601 date string for the event start",
					},
					"location":    {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
					"vibe": {
						Type:        genai.TypeString,
						Description: "A short vibe check like 'Techno Vibe' or 'Chic & Classy'",
					},
					"startTime": {Type: genai.TypeString},
					"endTime":   {Type: genai.TypeString},
					"isAccessible": {
						Type:        genai.TypeBoolean,
						Description: "true for a beginner-friendly 'Safe Bet', false for a 'Deep Local' needing French fluency",
					},
					"accessibilityReason": {Type: genai.TypeString},
				},
				Required: []string{"id", "title", "category", "date", "isoDate", "location", "description", "vibe"},
			},
		},
	},
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

type DiscoveryStatsConfig struct {
	LogIndex       string
	RequestTimeout time.Duration
}

// DiscoveryStatsService ships one telemetry document per discovery call to
// Elasticsearch. Indexing is fire-and-forget: failures are logged and never
// affect the pipeline. A nil service is a no-op, for deployments without ES.
type DiscoveryStatsService struct {
	es             *elasticsearch.Client
	logIndex       string
	requestTimeout time.Duration
}

func NewDiscoveryStatsService(es *elasticsearch.Client, cfg DiscoveryStatsConfig) *DiscoveryStatsService {
	index := cfg.LogIndex
	if index == "" {
		index = "escale-discovery-logs"
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DiscoveryStatsService{es: es, logIndex: index, requestTimeout: timeout}
}

func (s *DiscoveryStatsService) RecordDiscovery(query string, events, sources int, latency time.Duration, background bool, callErr error) {
	if s == nil || s.es == nil {
		return
	}

	doc := struct {
		Timestamp  string `json:"@timestamp"`
		Query      string `json:"query"`
		Events     int    `json:"events"`
		Sources    int    `json:"sources"`
		LatencyMS  int64  `json:"latency_ms"`
		Background bool   `json:"background"`
		Error      string `json:"error,omitempty"`
	}{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Query:      query,
		Events:     events,
		Sources:    sources,
		LatencyMS:  latency.Milliseconds(),
		Background: background,
	}
	if callErr != nil {
		doc.Error = callErr.Error()
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		log.Printf("discovery stats: marshal: %v", err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
		defer cancel()

		res, err := s.es.Index(s.logIndex, bytes.NewReader(payload), s.es.Index.WithContext(ctx))
		if err != nil {
			log.Printf("discovery stats: index: %v", err)
			return
		}
		defer res.Body.Close()
		if res.IsError() {
			log.Printf("discovery stats: index returned %s", res.Status())
		}
	}()
}

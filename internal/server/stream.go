package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ProgressEvent is pushed to SSE subscribers as optimization advances
type ProgressEvent struct {
	JobID       string   `json:"jobId"`
	State       JobState `json:"state"`
	Stage       int      `json:"stage"`
	Iteration   int      `json:"iteration"`
	Dmax        float64  `json:"dmax"`
	MinDistance float64  `json:"minDistance"`
	Timestamp   int64    `json:"timestamp"`
}

// EventBroadcaster fans progress events out to per-job subscriber channels
type EventBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan ProgressEvent]struct{}
}

// NewEventBroadcaster creates a new EventBroadcaster
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		subscribers: make(map[string]map[chan ProgressEvent]struct{}),
	}
}

// Subscribe registers a channel to receive events for the given job
func (eb *EventBroadcaster) Subscribe(jobID string) chan ProgressEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan ProgressEvent, 16)
	if eb.subscribers[jobID] == nil {
		eb.subscribers[jobID] = make(map[chan ProgressEvent]struct{})
	}
	eb.subscribers[jobID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes a channel from the job's subscriber set
func (eb *EventBroadcaster) Unsubscribe(jobID string, ch chan ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if subs, ok := eb.subscribers[jobID]; ok {
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(eb.subscribers, jobID)
		}
	}
}

// Broadcast delivers an event to all subscribers of the job. Slow
// subscribers drop events rather than block the worker.
func (eb *EventBroadcaster) Broadcast(event ProgressEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for ch := range eb.subscribers[event.JobID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// CleanupJob closes and removes all subscriber channels for a job
func (eb *EventBroadcaster) CleanupJob(jobID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if subs, ok := eb.subscribers[jobID]; ok {
		for ch := range subs {
			close(ch)
		}
		delete(eb.subscribers, jobID)
	}
}

func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.jobManager.broadcaster.Subscribe(jobID)
	defer s.jobManager.broadcaster.Unsubscribe(jobID, ch)

	// Send the current state immediately so late subscribers catch up.
	writeSSEEvent(w, ProgressEvent{
		JobID:       job.ID,
		State:       job.State,
		Stage:       job.Stage,
		Iteration:   job.Iteration,
		Dmax:        job.Dmax,
		MinDistance: job.MinDistance,
		Timestamp:   time.Now().UnixMilli(),
	})
	flusher.Flush()

	// A finished job broadcasts nothing further; the catch-up event is the
	// whole stream.
	if job.State == StateCompleted || job.State == StateFailed {
		return
	}

	ping := time.NewTicker(15 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, event)
			flusher.Flush()
			if event.State == StateCompleted || event.State == StateFailed {
				return
			}
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, event ProgressEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal progress event", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

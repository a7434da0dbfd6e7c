// mock-collaborators serves stand-ins for the external systems the
// agents call: the policy engine, the chat webhook, the vector search
// service, the envelope store, the analytics warehouse and the cluster
// state service. Intended
// for local development only.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

type envelope struct {
	EnvelopeID string         `json:"envelope_id"`
	CreatedAt  string         `json:"created_at"`
	Agent      string         `json:"agent"`
	Payload    map[string]any `json:"payload"`
	Signature  string         `json:"signature"`
}

type envelopeLog struct {
	mu        sync.Mutex
	envelopes []envelope
}

func main() {
	store := &envelopeLog{}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Policy engine: admit scale/restart with high confidence, deny
	// everything else so escalation paths get exercised.
	mux.HandleFunc("/v1/data/sentinel/admit", func(w http.ResponseWriter, r *http.Request) {
		if !enforcePost(w, r) {
			return
		}
		var body struct {
			Input struct {
				Action     string `json:"action"`
				Confidence int    `json:"confidence"`
			} `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		admit := body.Input.Confidence >= 70 &&
			(body.Input.Action == "scale" || body.Input.Action == "restart")
		reason := "action permitted by change policy"
		if !admit {
			reason = "action requires human approval"
		}
		writeJSON(w, map[string]any{
			"result": map[string]any{"admit": admit, "reason": reason, "confidence": 0.9},
		})
	})

	// Chat webhook: accept anything and echo ok.
	mux.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {
		if !enforcePost(w, r) {
			return
		}
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("webhook message:\n%s", body.Text)
		_, _ = w.Write([]byte("ok"))
	})

	// Vector search: canned runbook snippets biased toward the query.
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if !enforcePost(w, r) {
			return
		}
		var body struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		results := []map[string]any{
			{"doc_id": "runbook-123", "snippet": "Restart the affected pod and watch the readiness probe.", "score": 0.95},
			{"doc_id": "kb-456", "snippet": "Check CPU usage on the node pool dashboard before scaling.", "score": 0.91},
			{"doc_id": "kb-789", "snippet": "Escalate to the on-call if the incident repeats within an hour.", "score": 0.74},
		}
		if strings.Contains(strings.ToLower(body.Query), "scale") {
			results[0], results[1] = results[1], results[0]
		}
		if body.Limit > 0 && body.Limit < len(results) {
			results = results[:body.Limit]
		}
		writeJSON(w, map[string]any{"results": results})
	})

	// Envelope store: append-only log with a list endpoint.
	mux.HandleFunc("/envelopes", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var env envelope
			if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			store.mu.Lock()
			store.envelopes = append(store.envelopes, env)
			store.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			limit := len(store.envelopes)
			if v := r.URL.Query().Get("limit"); v != "" {
				if n, err := strconv.Atoi(v); err == nil && n < limit {
					limit = n
				}
			}
			store.mu.Lock()
			out := make([]envelope, 0, limit)
			for i := len(store.envelopes) - 1; i >= 0 && len(out) < limit; i-- {
				out = append(out, store.envelopes[i])
			}
			store.mu.Unlock()
			writeJSON(w, out)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Warehouse: every resource reports one healthy instance.
	mux.HandleFunc("/healthy", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string]any{"count": 1, "resource": r.URL.Query().Get("resource")})
	})

	// Cluster state: every resource reports two running pods.
	mux.HandleFunc("/pods", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string]any{"pods": []string{"pod-1", "pod-2"}})
	})

	addr := ":7080"
	log.Printf("mock collaborators listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func enforcePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// Seeds a locally running server with demo data: a couple of recurring
// templates, an imported statement and a split event.
//
// Usage:
//
//	USE_MEMORY_STORE=true go run ./cmd/server &
//	go run ./scripts/seed-demo
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8111"
	}
	userID := os.Getenv("USER_ID")
	if userID == "" {
		userID = "local-user"
	}

	log.Printf("seeding demo data for user %s at %s", userID, apiURL)

	post := func(path string, payload any) {
		body, err := json.Marshal(payload)
		if err != nil {
			log.Fatalf("marshaling payload for %s: %v", path, err)
		}
		req, err := http.NewRequest(http.MethodPost, apiURL+path, bytes.NewReader(body))
		if err != nil {
			log.Fatalf("building request for %s: %v", path, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", userID)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Fatalf("POST %s: %v", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			out, _ := io.ReadAll(resp.Body)
			log.Fatalf("POST %s: %s: %s", path, resp.Status, out)
		}
		log.Printf("POST %s: %s", path, resp.Status)
	}

	post("/api/recurring-expenses/", map[string]any{
		"description":    "Rent",
		"amount":         -1850.00,
		"frequency":      "monthly",
		"dayOfMonth":     1,
		"startDate":      "2025-01-01T00:00:00Z",
		"forecastMonths": 6,
	})
	post("/api/recurring-expenses/", map[string]any{
		"description":    "Netflix",
		"amount":         -55.90,
		"frequency":      "monthly",
		"dayOfMonth":     15,
		"startDate":      "2025-01-01T00:00:00Z",
		"forecastMonths": 6,
	})
	post("/api/recurring-expenses/", map[string]any{
		"description":    "Cleaning service",
		"amount":         -160.00,
		"frequency":      "weekly",
		"dayOfWeek":      2,
		"startDate":      "2025-01-01T00:00:00Z",
		"forecastMonths": 2,
	})

	statement := "Date,Description,Amount\n" +
		"2025-02-03,SUPERMERCADO PAGUE MENOS,-412.37\n" +
		"2025-02-07,POSTO SHELL,-180.00\n" +
		"2025-02-10,FARMACIA SAO JOAO,-86.20\n"
	post("/api/imports/", map[string]any{
		"fileContent":    statement,
		"statementMonth": 2,
		"statementYear":  2025,
	})

	post("/api/split-events/", map[string]any{
		"name":      "Beach house weekend",
		"eventDate": "2025-02-21T00:00:00Z",
		"participants": []map[string]any{
			{"name": "Ana & Bruno", "weight": 1.0, "isPayer": true},
			{"name": "Carla", "weight": 0.5},
			{"name": "Diego & Elisa", "weight": 1.0},
		},
	})

	fmt.Println("done")
}

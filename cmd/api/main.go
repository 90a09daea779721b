// Ops sidecar: a plain net/http server exposing reconciliation anomalies
// and low-stock alerts for dashboards and on-call tooling, separate from
// the customer-facing API.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/andresuchdata/ordena/backend-go/internal/config"
	"github.com/andresuchdata/ordena/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/ordena/backend-go/internal/service"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize Database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ingredients := postgres.NewIngredientRepository(db)
	recipes := postgres.NewRecipeRepository(db)
	anomalies := postgres.NewAnomalyRepository(db)
	catalog := service.NewCatalogService(ingredients, recipes, nil)

	// Create router
	r := mux.NewRouter()

	r.HandleFunc("/ops/businesses/{business_id}/anomalies", func(w http.ResponseWriter, req *http.Request) {
		businessID := mux.Vars(req)["business_id"]
		since := time.Now().AddDate(0, 0, -7)
		if raw := req.URL.Query().Get("since"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				http.Error(w, "invalid since timestamp", http.StatusBadRequest)
				return
			}
			since = parsed
		}

		list, err := anomalies.List(req.Context(), businessID, since)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"anomalies": list, "count": len(list)})
	}).Methods("GET")

	r.HandleFunc("/ops/businesses/{business_id}/low_stock", func(w http.ResponseWriter, req *http.Request) {
		businessID := mux.Vars(req)["business_id"]
		low, err := catalog.LowStockIngredients(req.Context(), businessID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"ingredients": low, "count": len(low)})
	}).Methods("GET")

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.OpsPort)
	log.Printf("Ops server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

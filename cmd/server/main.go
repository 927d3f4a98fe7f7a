package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/objectiveprep/backend/internal/database"
	"github.com/objectiveprep/backend/internal/insights"
	"github.com/objectiveprep/backend/internal/objectives"
	"github.com/objectiveprep/backend/internal/oracle"
	"github.com/objectiveprep/backend/internal/quiz"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARNING: no .env file loaded: %v", err)
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Stores
	objectiveStore := objectives.NewStore(db)
	insightStore := insights.NewStore(db)
	attemptStore := quiz.NewStore(db)

	// Oracle client
	oracleClient := oracle.New()

	// Initialize handlers
	quizService := quiz.NewService(oracleClient, attemptStore, objectiveStore, insightStore)
	quizHandler := quiz.NewHandler(quizService, attemptStore)
	objectiveHandler := objectives.NewHandler(objectiveStore)
	insightHandler := insights.NewHandler(insightStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	quizHandler.RegisterRoutes(api)
	objectiveHandler.RegisterRoutes(api)
	insightHandler.RegisterRoutes(api)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/studycycle/backend/internal/auth"
	"github.com/studycycle/backend/internal/database"
	"github.com/studycycle/backend/internal/generator"
	"github.com/studycycle/backend/internal/middleware"
	"github.com/studycycle/backend/internal/session"
	"github.com/studycycle/backend/internal/study"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	authHandler := auth.NewHandler(db)

	sessionStore := session.NewStore(db)
	studyService := study.NewService(sessionStore, generator.NewGenerator())
	studyHandler := study.NewHandler(studyService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/documents", studyHandler.UploadDocument).Methods("POST")
	protected.HandleFunc("/session", studyHandler.GetSession).Methods("GET")
	protected.HandleFunc("/session/reset", studyHandler.ResetTest).Methods("POST")
	protected.HandleFunc("/questions/generate", studyHandler.GenerateQuestions).Methods("POST")
	protected.HandleFunc("/questions/{id}/answer", studyHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/test/submit", studyHandler.SubmitTest).Methods("POST")
	protected.HandleFunc("/flashcards/generate", studyHandler.GenerateFlashcards).Methods("POST")
	protected.HandleFunc("/flashcards/{id}/master", studyHandler.MarkMastered).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
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

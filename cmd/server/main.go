package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/service"
	"github.com/finsight-app/backend/internal/store"
)

func main() {
	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8111"
	}

	ctx := context.Background()

	// Determine if we're running locally
	useMemoryStore := os.Getenv("USE_MEMORY_STORE") == "true" || os.Getenv("ENV") == "local"
	skipAuth := os.Getenv("SKIP_AUTH") == "true"

	var storeImpl store.Store
	var firebaseAuth *auth.FirebaseAuth

	if useMemoryStore {
		log.Println("Using in-memory store for local development")
		storeImpl = store.NewMemoryStore()

		// With the memory store, always use mock authentication so local
		// development needs no Firebase setup.
		firebaseAuth = nil
	} else {
		// Production mode - use Firestore
		projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
		if projectID == "" {
			log.Fatal("GOOGLE_CLOUD_PROJECT is required when not using the memory store")
		}

		firestoreClient, err := firestore.NewClient(ctx, projectID)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		if skipAuth {
			log.Println("SKIP_AUTH enabled - using mock authentication with Firestore (for seeding/testing only)")
			firebaseAuth = nil
		} else {
			firebaseAuth, err = auth.NewFirebaseAuth(ctx)
			if err != nil {
				log.Fatalf("Failed to initialize Firebase Auth: %v", err)
			}
		}

		storeImpl = store.NewFirestoreStore(firestoreClient)
	}

	engine := analytics.New(storeImpl)
	financeService := service.NewFinanceService(storeImpl, engine)

	mux := http.NewServeMux()
	financeService.RegisterRoutes(mux)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Wrap with auth middleware
	var handler http.Handler = mux
	if firebaseAuth != nil {
		handler = auth.Middleware(firebaseAuth)(handler)
	} else {
		handler = auth.LocalDevMiddleware()(handler)
	}

	// Set up CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:1234",
			"http://127.0.0.1:1234",
			"https://finsight.app",
			"https://www.finsight.app",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
			"X-Debug-Impersonate-User",
		},
		AllowCredentials: true,
	})
	handler = c.Handler(handler)

	// Create HTTP/2 server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	log.Printf("Starting server on port %s", port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

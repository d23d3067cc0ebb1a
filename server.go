package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"postboard/auth"
	"postboard/handlers"
	"postboard/storage"
	"postboard/storage/in_memory"
	"postboard/storage/persistent"
	"postboard/storage/persistent_cached"
	"postboard/utils"
)

type StorageMode string

const (
	InMemory       StorageMode = "inmemory"
	Mongo          StorageMode = "mongo"
	MongoWithCache StorageMode = "cached"
)

func CreateServer(store storage.Storage, gate *auth.Gate) *http.Server {
	r := mux.NewRouter()
	handler := &handlers.HTTPHandler{Storage: store, Gate: gate}

	r.HandleFunc("/maintenance/ping", handler.HealthCheck).Methods("GET")
	r.HandleFunc("/api/posts", handler.HandleListPosts).Methods("GET")
	r.HandleFunc("/api/posts", handler.HandleCreatePost).Methods("POST")
	r.HandleFunc("/api/posts/{postId}", handler.HandleGetPost).Methods("GET")
	r.HandleFunc("/api/posts/{postId}", handler.HandleUpdatePost).Methods("PUT")
	r.HandleFunc("/api/posts/{postId}", handler.HandleDeletePost).Methods("DELETE")

	port := utils.GetEnvVarWithDefault("SERVER_PORT", "8080")
	return &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
}

func createStorageFromEnv(ctx context.Context) (storage.Storage, error) {
	storageMode := StorageMode(utils.GetEnvVarWithDefault("STORAGE_MODE", "inmemory"))
	if storageMode == InMemory {
		return in_memory.CreateInMemoryStorage(), nil
	}

	mongoUrl := utils.GetEnvVar("MONGO_URL")
	mongoDbName := utils.GetEnvVar("MONGO_DBNAME")
	mongoStorage, err := persistent.CreateMongoStorage(ctx, mongoUrl, mongoDbName)
	if err != nil {
		return nil, err
	}
	switch storageMode {
	case Mongo:
		return mongoStorage, nil
	case MongoWithCache:
		redisUrl := utils.GetEnvVar("REDIS_URL")
		return persistent_cached.CreatePersistentStorageCachedWithRedis(mongoStorage, redisUrl), nil
	default:
		return nil, fmt.Errorf("invalid 'STORAGE_MODE': %s", storageMode)
	}
}

func main() {
	ctx := context.Background()

	store, err := createStorageFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to create storage: %s", err.Error())
	}
	gate := auth.NewGate(auth.NewJWTVerifier([]byte(utils.GetEnvVar("JWT_SECRET"))))

	srv := CreateServer(store, gate)
	go func() {
		log.Printf("Start serving on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %s", err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %s", err.Error())
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Printf("Storage closing failed: %s", err.Error())
	}
}

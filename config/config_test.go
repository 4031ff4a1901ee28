package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "postgres" {
		t.Errorf("Expected default backend postgres, got %s", cfg.Storage.Backend)
	}
	if cfg.Moderation.StrikeLimit != 5 {
		t.Errorf("Expected default strike limit 5, got %d", cfg.Moderation.StrikeLimit)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for unknown storage backend")
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for default JWT secret in production")
	}
}

func TestLoad_MemoryBackendRejectedInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("STORAGE_BACKEND", "memory")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for memory backend in production")
	}
}

func TestGetDSN(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "arcade")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	dsn := cfg.GetDSN()
	want := "host=db.internal port=5432 user=arcadehub password=arcadehub_password dbname=arcade sslmode=disable"
	if dsn != want {
		t.Errorf("Expected DSN %q, got %q", want, dsn)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Quiz.RRFK != 60 {
		t.Errorf("Quiz.RRFK = %d, want 60", cfg.Quiz.RRFK)
	}
	if cfg.Quiz.CandidatesN != 20 {
		t.Errorf("Quiz.CandidatesN = %d, want 20", cfg.Quiz.CandidatesN)
	}
	if cfg.Quiz.TopK != 10 {
		t.Errorf("Quiz.TopK = %d, want 10", cfg.Quiz.TopK)
	}
}

func TestQuizConfig_TTLHelpers(t *testing.T) {
	cfg := QuizConfig{LockTTLSeconds: 3600, ProgressTTLHours: 24}

	if got := cfg.LockTTL(); got != time.Hour {
		t.Errorf("LockTTL() = %v, want 1h", got)
	}
	if got := cfg.ProgressTTL(); got != 24*time.Hour {
		t.Errorf("ProgressTTL() = %v, want 24h", got)
	}
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", DBName: "quiz_ai", SSLMode: "disable",
	}

	want := "host=db port=5432 user=u password=p dbname=quiz_ai sslmode=disable"
	if got := cfg.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}

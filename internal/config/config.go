package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv, AppPort string
	CORSOrigins     []string
	SecureHeaders   bool

	RedisAddr string
	RedisDB   int

	ProjectRoot string
	UploadDir   string

	QuizgenPython  string
	QuizgenScript  string
	QuizgenOutput  string
	QuizgenTimeout time.Duration
	QuizgenRPS     float64
	QuizgenBurst   int

	RateLimitMax    int
	RateLimitWindow time.Duration

	MaxBodyLimit       int
	AllowedMaxFileSize int
	AllowedFileExt     []string
}

func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppEnv:             get("APP_ENV", "dev"),
		AppPort:            get("APP_PORT", "8080"),
		CORSOrigins:        split(get("CORS_ORIGINS", "http://localhost:4200")),
		SecureHeaders:      parseBool(get("SECURE_HEADERS", "true")),
		RedisAddr:          get("REDIS_ADDR", ""),
		RedisDB:            atoi(get("REDIS_DB", "0")),
		ProjectRoot:        get("PROJECT_ROOT", workingDir()),
		UploadDir:          get("UPLOAD_DIR", "uploads"),
		QuizgenPython:      get("QUIZGEN_PYTHON", defaultPython()),
		QuizgenScript:      get("QUIZGEN_SCRIPT", filepath.Join("ai", "quizgen.py")),
		QuizgenOutput:      get("QUIZGEN_OUTPUT", "generated_questions.json"),
		QuizgenTimeout:     mustDuration(get("QUIZGEN_TIMEOUT", "10m")),
		QuizgenRPS:         parseFloat(get("QUIZGEN_RPS", "0")),
		QuizgenBurst:       GetEnvInt("QUIZGEN_BURST", 1),
		RateLimitMax:       GetEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:    mustDuration(get("RATE_LIMIT_WINDOW", "30s")),
		MaxBodyLimit:       GetEnvInt("MAX_BODY_LIMIT", 64),
		AllowedMaxFileSize: GetEnvInt("ALLOWED_MAX_FILE_SIZE", 20),
		AllowedFileExt:     GetEnvList("ALLOWED_FILE_EXT", []string{"pdf", "docx", "txt", "md"}),
	}
	return c
}

// Default mirrors Load without reading the environment. Tests start from it.
func Default() *Config {
	return &Config{
		AppEnv:             "dev",
		AppPort:            "8080",
		CORSOrigins:        []string{"http://localhost:4200"},
		SecureHeaders:      true,
		ProjectRoot:        workingDir(),
		UploadDir:          "uploads",
		QuizgenPython:      defaultPython(),
		QuizgenScript:      filepath.Join("ai", "quizgen.py"),
		QuizgenOutput:      "generated_questions.json",
		QuizgenTimeout:     10 * time.Minute,
		QuizgenBurst:       1,
		RateLimitMax:       100,
		RateLimitWindow:    30 * time.Second,
		MaxBodyLimit:       64,
		AllowedMaxFileSize: 20,
		AllowedFileExt:     []string{"pdf", "docx", "txt", "md"},
	}
}

// the venv layout differs between windows and everything else
func defaultPython() string {
	if runtime.GOOS == "windows" {
		return filepath.Join("venv-quiz", "Scripts", "python.exe")
	}
	return filepath.Join("venv-quiz", "bin", "python")
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func GetEnvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return d
}

func GetEnvList(k string, d []string) []string {
	if v := os.Getenv(k); v != "" {
		return strings.Split(v, ",")
	}
	return d
}

func get(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
func atoi(s string) int                   { i, _ := strconv.Atoi(s); return i }
func parseBool(s string) bool             { b, _ := strconv.ParseBool(s); return b }
func parseFloat(s string) float64         { f, _ := strconv.ParseFloat(s, 64); return f }
func mustDuration(s string) time.Duration { d, _ := time.ParseDuration(s); return d }
func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func GetEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}

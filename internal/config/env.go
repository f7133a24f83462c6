package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string `yaml:"app_addr"`
	GinMode string `yaml:"gin_mode"`

	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`
	AdminKey  string        `yaml:"admin_key"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	StaticDir          string   `yaml:"static_dir"`
}

// Defaults mirrors a local development setup.
func Defaults() Env {
	return Env{
		AppAddr: ":5000",
		DBHost:  "127.0.0.1",
		DBPort:  "3306",
		DBUser:  "root",
		DBName:  "bookmybus",
		JWTTTL:  24 * time.Hour,
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
	}
}

// LoadEnv reads the process environment on top of Defaults. A .env file in
// the working directory is loaded first when present.
func LoadEnv() Env {
	return LoadEnvFrom(Defaults(), "")
}

// LoadEnvFrom applies an optional env file and the process environment over
// base. Variables already set in the process are never overwritten by the file.
func LoadEnvFrom(base Env, envFile string) Env {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("[CONFIG] env file %s not loaded: %v", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	env := base
	setString(&env.AppAddr, "APP_ADDR")
	setString(&env.GinMode, "GIN_MODE")
	setString(&env.DBHost, "DB_HOST")
	setString(&env.DBPort, "DB_PORT")
	setString(&env.DBUser, "DB_USER")
	setString(&env.DBPassword, "DB_PASSWORD")
	setString(&env.DBName, "DB_NAME")
	setString(&env.JWTSecret, "JWT_SECRET")
	setString(&env.AdminKey, "ADMIN_KEY")
	setString(&env.StaticDir, "STATIC_DIR")

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" && os.Getenv("APP_ADDR") == "" {
		env.AppAddr = ":" + v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			env.JWTTTL = d
		} else if h, err := strconv.Atoi(v); err == nil && h > 0 {
			env.JWTTTL = time.Duration(h) * time.Hour
		}
	}
	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		env.CORSAllowedOrigins = splitList(v)
	}

	if env.JWTSecret == "" {
		env.JWTSecret = "change-me-in-production"
		log.Println("[CONFIG] JWT_SECRET not set, using development secret")
	}
	return env
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func splitList(raw string) []string {
	out := []string{}
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

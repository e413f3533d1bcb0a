package config // package config loads application configuration from environment variables

import (
    "errors"
    "fmt"
    "os"
    "time"

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env                  string        // application environment (e.g. "dev", "prod")
    Port                 string        // HTTP port to listen on
    DBUser               string        // database username
    DBPass               string        // database password (optional)
    DBHost               string        // database host address
    DBPort               string        // database port number
    DBName               string        // database name
    DBAutoMigrate        bool          // apply the embedded schema at startup
    BcryptCost           int           // bcrypt cost for password hashing
    ReservationWindow    time.Duration // look-back window counted against branch capacity
    ContentionRetryAfter time.Duration // Retry-After advertised when a row lock is busy
    RabbitURL            string        // AMQP broker URL; empty disables events
    EventLogDir          string        // directory the event consumer appends to
}

// Load reads a .env file when present, then builds a Config from the
// environment.  Every missing required variable is reported in the
// returned error rather than stopping at the first one.
func Load() (Config, error) {
    _ = godotenv.Load() // .env is optional

    var missing []error
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || v == "" {
            missing = append(missing, fmt.Errorf("missing required env var: %s", key))
        }
        return v
    }

    cfg := Config{
        Env:                  must("APP_ENV"),
        Port:                 must("APP_PORT"),
        DBUser:               must("DB_USER"),
        DBPass:               os.Getenv("DB_PASS"),
        DBHost:               must("DB_HOST"),
        DBPort:               must("DB_PORT"),
        DBName:               must("DB_NAME"),
        DBAutoMigrate:        envBool("DB_AUTO_MIGRATE", false),
        BcryptCost:           envInt("BCRYPT_COST", 10),
        ReservationWindow:    time.Duration(envInt("RESERVATION_WINDOW_MIN", 90)) * time.Minute,
        ContentionRetryAfter: envDur("CONTENTION_RETRY_AFTER", time.Second),
        RabbitURL:            rabbitURL(),
        EventLogDir:          envStr("EVENT_LOG_DIR", "logs"),
    }
    if len(missing) > 0 {
        return Config{}, errors.Join(missing...)
    }
    if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
        return Config{}, fmt.Errorf("invalid BCRYPT_COST %d", cfg.BcryptCost)
    }
    if cfg.ReservationWindow < 0 {
        return Config{}, fmt.Errorf("invalid RESERVATION_WINDOW_MIN %s", os.Getenv("RESERVATION_WINDOW_MIN"))
    }
    return cfg, nil
}

// rabbitURL honours both RABBITMQ_URL and the shorter AMQP_URL.
func rabbitURL() string {
    if v := os.Getenv("RABBITMQ_URL"); v != "" {
        return v
    }
    return os.Getenv("AMQP_URL")
}

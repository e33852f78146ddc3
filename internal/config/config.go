package config // package config loads application configuration from environment variables

import (
    "fmt"     // fmt formats validation errors
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings normalizes driver names and log levels
)

// Config holds all runtime configuration values of the HTTP server.  Each
// field corresponds to an environment variable.
type Config struct {
    Env               string        // application environment (e.g. "dev", "prod")
    Port              string        // HTTP port to listen on
    DB                DBConfig      // storage settings
    JWTSecret         string        // secret used to sign admin JWTs
    AccessTTLMin      int           // access token time-to-live in minutes
    AdminUser         string        // login name of the seating administrator
    AdminPasswordHash string        // bcrypt hash of the administrator password
    LogLevel          string        // slog level: debug, info, warn, error
    RabbitMQURL       string        // AMQP URL for seating.changed events (empty disables)
    Seating           SeatingConfig // engine settings
}

// DBConfig selects and configures the backing store.
type DBConfig struct {
    Driver     string // "mysql" or "sqlite"
    User       string // mysql user
    Pass       string // mysql password (empty allowed)
    Host       string // mysql host
    Port       string // mysql port
    Name       string // mysql database name
    SQLitePath string // sqlite database file (":memory:" allowed)
}

// SeatingConfig carries the tunables of the seating engine and importer.
type SeatingConfig struct {
    TokenPrefix      string // check-in token prefix, e.g. WEDDING
    OverflowNumber   int    // table number of the overflow (children's) table
    OverflowCapacity int    // capacity used when the overflow table is created
    OverflowName     string // display name used when the overflow table is created
    OverflowSentinel string // import designator that means "overflow table"
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    db, err := LoadDB()
    if err != nil {
        log.Fatalf("database config: %v", err)
    }
    return Config{
        Env:               must("APP_ENV"),                 // environment (dev/test/prod)
        Port:              must("APP_PORT"),                // port to bind the HTTP server
        DB:                db,                              // storage
        JWTSecret:         must("JWT_SECRET"),              // secret used for signing JWTs
        AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"), // TTL for access tokens in minutes
        AdminUser:         envStr("ADMIN_USER", "admin"),   // administrator login
        AdminPasswordHash: must("ADMIN_PASSWORD_HASH"),     // bcrypt hash
        LogLevel:          envStr("LOG_LEVEL", "info"),     // log verbosity
        RabbitMQURL:       RabbitMQURL(),                   // empty disables publishing
        Seating:           LoadSeating(),                   // engine tunables
    }
}

// RabbitMQURL returns the AMQP URL for seating.changed events, empty when
// publishing is disabled.  Both the server and seatctl read it.
func RabbitMQURL() string { return strings.TrimSpace(os.Getenv("RABBITMQ_URL")) }

// LoadDB reads the storage settings.  Unlike Load it reports problems as an
// error so the CLI can print them instead of exiting.
func LoadDB() (DBConfig, error) {
    c := DBConfig{
        Driver:     strings.ToLower(envStr("DB_DRIVER", "mysql")),
        User:       os.Getenv("DB_USER"),
        Pass:       os.Getenv("DB_PASS"),
        Host:       envStr("DB_HOST", "127.0.0.1"),
        Port:       envStr("DB_PORT", "3306"),
        Name:       os.Getenv("DB_NAME"),
        SQLitePath: envStr("SQLITE_PATH", "seating.db"),
    }
    switch c.Driver {
    case "mysql":
        if c.User == "" || c.Name == "" {
            return c, fmt.Errorf("DB_USER and DB_NAME are required for the mysql driver")
        }
    case "sqlite", "sqlite3":
        c.Driver = "sqlite"
    default:
        return c, fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
    }
    return c, nil
}

// LoadSeating reads the engine tunables, falling back to the defaults of the
// wedding the system was built for.
func LoadSeating() SeatingConfig {
    c := SeatingConfig{
        TokenPrefix:      envStr("CHECKIN_TOKEN_PREFIX", "WEDDING"),
        OverflowNumber:   envInt("OVERFLOW_TABLE_NUMBER", 27),
        OverflowCapacity: envInt("OVERFLOW_TABLE_CAPACITY", 20),
        OverflowName:     envStr("OVERFLOW_TABLE_NAME", "Table des enfants"),
        OverflowSentinel: envStr("OVERFLOW_SENTINEL", "TABLE ENFANT"),
    }
    if c.OverflowNumber < 1 { c.OverflowNumber = 27 }
    if c.OverflowCapacity < 0 { c.OverflowCapacity = 20 }
    return c
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

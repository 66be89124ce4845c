package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// dialect describes how one database family is reached.
type dialect struct {
	name      string
	aliases   []string
	dsn       func(Config) (string, error)
	dialector func(dsn string) gorm.Dialector
	afterOpen func(*gorm.DB) error
}

var dialects = []dialect{
	{
		name:      "sqlite",
		aliases:   []string{"sqlite3"},
		dsn:       sqliteDSN,
		dialector: sqlite.Open,
		afterOpen: enableForeignKeys,
	},
	{
		name:      "postgres",
		aliases:   []string{"postgresql", "pg"},
		dsn:       postgresDSN,
		dialector: postgres.Open,
	},
	{
		name:      "mysql",
		aliases:   []string{"mariadb"},
		dsn:       mysqlDSN,
		dialector: mysql.Open,
	},
}

// lookupDialect resolves a driver name; an empty name selects sqlite.
func lookupDialect(driver string) (dialect, bool) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = "sqlite"
	}
	for _, d := range dialects {
		if d.name == driver {
			return d, true
		}
		for _, alias := range d.aliases {
			if alias == driver {
				return d, true
			}
		}
	}
	return dialect{}, false
}

// sqliteDSN builds a file or named in-memory DSN and creates the parent directory of file databases.
func sqliteDSN(cfg Config) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn, nil
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		// Each name is its own database; handles opened with the same name share it.
		name := strings.TrimSpace(cfg.Name)
		if name == "" {
			name = "authflow"
		}
		return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", url.PathEscape(name)), nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	return fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000", filepath.ToSlash(path)), nil
}

// postgresDSN builds a postgres:// URL. Explicit DSNs are parsed up front so typos fail before dialing.
func postgresDSN(cfg Config) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		if _, err := pgconn.ParseConfig(dsn); err != nil {
			return "", fmt.Errorf("postgres dsn: %w", err)
		}
		return dsn, nil
	}

	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("postgres configuration requires user and database name")
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	query := url.Values{}
	for key, value := range cfg.Options {
		query.Set(key, value)
	}
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}

	user := url.User(cfg.User)
	if cfg.Password != "" {
		user = url.UserPassword(cfg.User, cfg.Password)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + cfg.Name,
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

// mysqlDSN formats a go-sql-driver DSN with utf8mb4, parsed times and local timestamps.
func mysqlDSN(cfg Config) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		if _, err := mysqldriver.ParseDSN(dsn); err != nil {
			return "", fmt.Errorf("mysql dsn: %w", err)
		}
		return dsn, nil
	}

	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	dc := mysqldriver.NewConfig()
	dc.User = cfg.User
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	dc.DBName = cfg.Name
	dc.ParseTime = true
	dc.Loc = time.Local
	dc.Params = map[string]string{"charset": "utf8mb4"}
	for key, value := range cfg.Options {
		if key == "tls" {
			dc.TLSConfig = value
			continue
		}
		dc.Params[key] = value
	}
	return dc.FormatDSN(), nil
}

func enableForeignKeys(db *gorm.DB) error {
	return db.Exec("PRAGMA foreign_keys = ON").Error
}

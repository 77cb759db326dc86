package database

import (
	"fmt"
	"time"
)

const defaultPort = 3306

// Config holds all settings needed to connect to and pool a MySQL server.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`

	// Pool tuning
	MaxConns        int           `yaml:"max_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`

	// ConnectTimeout is the time limit for establishing and verifying
	// a new connection.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// DefaultConfig returns pool settings suitable for a read-heavy
// metadata workload against the given database.
func DefaultConfig(host string, port int, user, password, db string) *Config {
	return &Config{
		Host:            host,
		Port:            port,
		User:            user,
		Password:        password,
		Database:        db,
		MaxConns:        10,
		MaxIdleConns:    5,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// DSN constructs the go-sql-driver data source name.
// format: user:pass@tcp(host:port)/dbname?parseTime=true
func (c *Config) DSN() string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, port, c.Database,
	)
}

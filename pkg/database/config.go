package database

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/Alijeyrad/simorq_portal/config"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func defaults() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DSN renders a postgres:// URL; user info is escaped so passwords may hold
// any character.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// withDB returns a copy pointed at another database on the same server.
func (c Config) withDB(name string) Config {
	c.DBName = name
	return c
}

func FromCentralConfig(c config.DatabaseConfig) Config {
	out := defaults()
	if c.Host != "" {
		out.Host = c.Host
	}
	if c.Port != 0 {
		out.Port = c.Port
	}
	if c.SSLMode != "" {
		out.SSLMode = c.SSLMode
	}
	if c.Pool.MaxOpenConns > 0 {
		out.MaxOpenConns = c.Pool.MaxOpenConns
	}
	if c.Pool.MaxIdleConns > 0 {
		out.MaxIdleConns = c.Pool.MaxIdleConns
	}
	if c.Pool.ConnMaxLifetimeMin > 0 {
		out.ConnMaxLifetime = time.Duration(c.Pool.ConnMaxLifetimeMin) * time.Minute
	}
	out.User, out.Password, out.DBName = c.User, c.Password, c.DBName
	return out
}

func NewDSN(c config.DatabaseConfig) string {
	return FromCentralConfig(c).DSN()
}

package postgres

import (
	"testing"

	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/m-mizutani/gt"
)

func TestDSN(t *testing.T) {
	dsn := DSN(&cfg.PGDBCfg{
		Host:     "db",
		Port:     "5432",
		User:     "shop",
		Password: "p@ss word",
		DBName:   "shop",
		SSLMode:  "disable",
	})

	gt.Value(t, dsn).Equal("postgres://shop:p%40ss%20word@db:5432/shop?sslmode=disable")
}

func TestDSN_NoSSLMode(t *testing.T) {
	dsn := DSN(&cfg.PGDBCfg{Host: "localhost", Port: "5432", User: "u", Password: "p", DBName: "d"})
	gt.Value(t, dsn).Equal("postgres://u:p@localhost:5432/d")
}

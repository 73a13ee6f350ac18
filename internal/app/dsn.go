package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dyvilcenter/backoffice/internal/db"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// dbTarget is a password-free description of a DSN, safe to log.
type dbTarget struct {
	Dialect     string
	Host        string
	Port        int
	User        string
	Name        string
	TLS         bool
	Path        string
	PasswordSet bool
}

func (t dbTarget) fields() log.Fields {
	fields := log.Fields{"dialect": t.Dialect}
	if t.Path != "" {
		fields["path"] = t.Path
		return fields
	}
	fields["host"] = t.Host
	fields["port"] = t.Port
	fields["user"] = t.User
	fields["database"] = t.Name
	fields["password_set"] = t.PasswordSet
	if t.Dialect == db.DialectPostgres {
		fields["tls"] = t.TLS
	}
	return fields
}

func describeDSN(dsn string) (dbTarget, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return dbTarget{}, fmt.Errorf("empty dsn")
	}

	switch db.DialectForDSN(trimmed) {
	case db.DialectSQLite:
		pathPart := trimmed
		if strings.HasPrefix(strings.ToLower(pathPart), "file:") {
			pathPart = pathPart[len("file:"):]
		}
		pathPart, _, _ = strings.Cut(pathPart, "?")
		return dbTarget{Dialect: db.DialectSQLite, Path: strings.TrimSpace(pathPart)}, nil

	case db.DialectMySQL:
		_, rest, _ := strings.Cut(trimmed, "://")
		cfg, errParse := mysql.ParseDSN(rest)
		if errParse != nil {
			return dbTarget{}, fmt.Errorf("parse dsn: %w", errParse)
		}
		host, portPart, _ := strings.Cut(cfg.Addr, ":")
		port := 3306
		if portPart != "" {
			if parsed, errPort := strconv.Atoi(portPart); errPort == nil {
				port = parsed
			}
		}
		return dbTarget{
			Dialect:     db.DialectMySQL,
			Host:        host,
			Port:        port,
			User:        cfg.User,
			Name:        cfg.DBName,
			PasswordSet: cfg.Passwd != "",
		}, nil
	}

	cfg, errParse := pgx.ParseConfig(trimmed)
	if errParse != nil {
		return dbTarget{}, fmt.Errorf("parse dsn: %w", errParse)
	}
	return dbTarget{
		Dialect:     db.DialectPostgres,
		Host:        cfg.Host,
		Port:        int(cfg.Port),
		User:        cfg.User,
		Name:        cfg.Database,
		TLS:         cfg.TLSConfig != nil,
		PasswordSet: cfg.Password != "",
	}, nil
}

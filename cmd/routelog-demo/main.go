package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bingoohuang/routelog"
)

type options struct {
	addr        string
	routes      []string
	match       string
	logFormat   string
	logLevel    string
	logFile     string
	mysqlDSN    string
	mysqlTables []string
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	f := pflag.NewFlagSet("routelog-demo", pflag.ContinueOnError)

	f.StringVar(&o.addr, "addr", ":8080", "listen address")
	f.StringSliceVar(&o.routes, "routes", []string{"/api/"}, "routes to log, empty disables logging")
	f.StringVar(&o.match, "match", "contains", "route match mode: contains, prefix or glob")
	f.StringVar(&o.logFormat, "log-format", "text", "log format: text or json")
	f.StringVar(&o.logLevel, "log-level", "info", "log level")
	f.StringVar(&o.logFile, "log-file", "", "rotate logs into this file instead of stderr")
	f.StringVar(&o.mysqlDSN, "mysql-dsn", "", "also store records into MySQL, like user:pass@tcp(127.0.0.1:3306)/db")
	f.StringSliceVar(&o.mysqlTables, "mysql-tables", []string{"biz_log"}, "MySQL tables for the records")

	if err := f.Parse(args); err != nil {
		return nil, err
	}

	return o, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func setupLogging(o *options) (io.Closer, error) {
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	logrus.SetLevel(level)

	if o.logFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if o.logFile == "" {
		return nopCloser{}, nil
	}

	// nolint:gomnd
	w := &lumberjack.Logger{
		Filename:   o.logFile,
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
		Compress:   true,
	}
	logrus.SetOutput(w)

	return w, nil
}

func createStore(o *options) (routelog.Store, func(), error) {
	stores := routelog.Stores{routelog.NewLogrusStore()}

	if o.mysqlDSN == "" {
		return stores, func() {}, nil
	}

	db, err := sql.Open("mysql", o.mysqlDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql: %w", err)
	}

	stores = append(stores, routelog.NewSQLStore(db, o.mysqlTables...))

	return stores, func() { _ = db.Close() }, nil
}

func run(ctx context.Context, args []string) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	logCloser, err := setupLogging(o)
	if err != nil {
		return err
	}

	defer logCloser.Close()

	store, closeStore, err := createStore(o)
	if err != nil {
		return err
	}

	defer closeStore()

	app := newApp(o.routes, routelog.WithStore(store), routelog.WithMatchMode(routelog.ParseMatchMode(o.match)))
	srv := routelog.NewServer(o.addr, app)

	errCh := make(chan error, 1)

	go func() {
		logrus.Infof("listening on %s, routes to log %v (%s)", o.addr, o.routes, o.match)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	// nolint:gomnd
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		logrus.Fatalf("routelog-demo: %v", err)
	}
}

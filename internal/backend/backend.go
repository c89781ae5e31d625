// Package backend assembles the ledger the chat and HTTP layers run
// against: a storage driver wrapped by the event-publishing ExpenseService.
package backend

import (
	"context"
	"fmt"
	"strings"

	"vslim/internal/config"
	"vslim/internal/ledger"
)

// Driver names a ledger storage implementation.
type Driver string

const (
	DriverSQLite Driver = "sqlite"
	DriverMemory Driver = "memory"
)

var drivers = []Driver{DriverSQLite, DriverMemory}

// Drivers lists the supported drivers, the default first.
func Drivers() []Driver {
	return append([]Driver(nil), drivers...)
}

// ParseDriver accepts a driver name case-insensitively.
func ParseDriver(s string) (Driver, error) {
	d := Driver(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range drivers {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown ledger driver %q (want one of %v)", s, drivers)
}

// Events configures ledger event publishing. An empty URL disables it.
type Events struct {
	URL      string
	Exchange string
	Queue    string
}

func (e Events) Enabled() bool { return e.URL != "" }

// Config selects and configures the ledger.
type Config struct {
	Driver     Driver
	SQLitePath string
	Events     Events
}

// FromAppConfig derives the ledger configuration from the process config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	d, err := ParseDriver(app.DataBackend)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Driver:     d,
		SQLitePath: app.SQLiteDBPath,
		Events: Events{
			URL:      app.AMQPURL,
			Exchange: app.AMQPExchange,
			Queue:    app.AMQPQueue,
		},
	}, nil
}

func (c Config) Validate() error {
	if _, err := ParseDriver(string(c.Driver)); err != nil {
		return err
	}
	if c.Driver == DriverSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLite database path is required for the sqlite driver")
	}
	if c.Events.Enabled() && (c.Events.Exchange == "" || c.Events.Queue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP URL is set")
	}
	return nil
}

// Ledger is an opened ledger. Store publishes events when Publishing is
// true; Close releases the driver and the broker connection.
type Ledger struct {
	Store      ledger.Store
	Driver     Driver
	Publishing bool
}

func (l *Ledger) Close() error {
	if l == nil || l.Store == nil {
		return nil
	}
	return l.Store.Close()
}

// Factory opens ledgers from configuration.
type Factory interface {
	Open(ctx context.Context, cfg Config) (*Ledger, error)
}

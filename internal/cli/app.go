package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/suvanzhou/futu-algo/broker"
	"github.com/suvanzhou/futu-algo/broker/sim"
	"github.com/suvanzhou/futu-algo/config"
	"github.com/suvanzhou/futu-algo/journal"
	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/notify"
	"github.com/suvanzhou/futu-algo/store"
)

// App carries what every command needs: the loaded config and a
// configured root logger. Stores and sessions are opened per command so
// a bare `futu-algo version` never touches the database.
type App struct {
	ConfigPath string
	LogLevel   string

	Config *config.Config
	Log    zerolog.Logger
}

func (a *App) Init() error {
	var (
		cfg *config.Config
		err error
	)
	if a.ConfigPath != "" {
		cfg, err = config.Load(a.ConfigPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return err
	}
	a.Config = cfg

	levelName := cfg.Log.Level
	if a.LogLevel != "" {
		levelName = a.LogLevel
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelName, err)
	}

	log := zerolog.New(os.Stderr)
	if cfg.Log.Format == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	a.Log = log.Level(level).With().Timestamp().Logger()
	return nil
}

func (a *App) OpenStore() (*store.Store, error) {
	return store.Open(a.Config.Database.Data)
}

func (a *App) OpenJournal() (*journal.Journal, error) {
	return journal.Open(a.Config.Database.Journal)
}

// Session builds the brokerage session the config selects.
func (a *App) Session() (broker.Session, error) {
	switch a.Config.Broker.Mode {
	case "sim":
		return sim.NewSession(1), nil
	case "futu":
		return nil, fmt.Errorf("broker mode %q requires a FutuOpenD gateway client, which is not bundled", a.Config.Broker.Mode)
	default:
		return nil, fmt.Errorf("unknown broker mode %q", a.Config.Broker.Mode)
	}
}

// StockList resolves the instrument universe: the configured list, or
// every instrument with local data when the list is empty.
func (a *App) StockList(cmd *cobra.Command, s *store.Store) ([]market.Code, error) {
	if codes := a.Config.StockCodes(); len(codes) > 0 {
		return codes, nil
	}
	codes, err := s.KnownCodes(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no instruments: set trade.stock_list or run `futu-algo update` first")
	}
	return codes, nil
}

// Dispatcher builds the report fan-out. Reports print to the terminal;
// a mail or chat transport drops in behind notify.Sender without
// touching the pipelines.
func (a *App) Dispatcher() *notify.Dispatcher {
	subscribers := a.Config.Email.SubscriptionList
	if len(subscribers) == 0 {
		subscribers = []string{"stdout"}
	}
	return notify.NewDispatcher(stdoutSender{}, subscribers, a.Log)
}

// stdoutSender prints a report to the terminal.
type stdoutSender struct{}

func (stdoutSender) Send(_ context.Context, recipient, subject, body string) error {
	_, err := fmt.Fprintf(os.Stdout, "[to: %s] %s\n\n%s\n", recipient, subject, body)
	return err
}

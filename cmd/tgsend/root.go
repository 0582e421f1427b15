package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danhigham/tgsend/internal/app"
	"github.com/danhigham/tgsend/internal/config"
	"github.com/danhigham/tgsend/internal/telegram"
	"github.com/danhigham/tgsend/internal/ui"
)

// dialerFactory builds the session dialer once credentials and logging are known.
type dialerFactory func(creds config.Credentials, connectTimeout time.Duration, logger *zap.Logger) app.Dialer

func telegramDialer(creds config.Credentials, connectTimeout time.Duration, logger *zap.Logger) app.Dialer {
	return telegram.NewDialer(creds.Lookup, connectTimeout, logger)
}

type flags struct {
	configPath     string
	apiID          int
	apiHash        string
	phone          string
	code           string
	password       string
	sessionFile    string
	target         string
	message        string
	logLevel       string
	logFile        string
	connectTimeout time.Duration
}

// execute parses args, runs the command and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, newDialer dialerFactory) app.ExitCode {
	reporter := ui.NewReporter(stdout, stderr)
	code := app.Success

	cmd := newRootCmd(reporter, newDialer, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		reporter.Failed(err)
		fmt.Fprintln(stderr)
		cmd.SetOut(stderr)
		_ = cmd.Usage()
		return app.UnknownError
	}
	return code
}

func newRootCmd(reporter *ui.Reporter, newDialer dialerFactory, code *app.ExitCode) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "tgsend",
		Short: "Send a Telegram message from the command line",
		Long: `tgsend logs in to Telegram as a user and sends one text message.

The first run without --code sends a login code to the account. Run again
with --code (and --password if two-factor authentication is enabled) to
finish logging in. Later runs reuse the session file.

Exit codes:
  0 sent    1 authorization required    2 code required
  3 password required    4 send failed    5 connection failed
  6 invalid target    7 other error`,
		Example: `  tgsend -a 12345 -h 0123abcd -p +15551234567 -t @alice -m "hello"
  tgsend -a 12345 -h 0123abcd -p +15551234567 -c 12345 -t +15557654321 -m "hi"`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f.configPath)
			if err != nil {
				return err
			}

			opts := f.options(cmd, cfg)
			if err := opts.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(firstNonEmpty(f.logLevel, cfg.LogLevel), firstNonEmpty(f.logFile, cfg.LogFile))
			if err != nil {
				return err
			}
			defer logger.Sync()

			a := app.New(newDialer(opts.Credentials, f.connectTimeout, logger), reporter, logger)
			*code = a.Run(cmd.Context(), opts)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	fl.IntVarP(&f.apiID, "api-id", "a", 0, "Telegram API ID")
	fl.StringVarP(&f.apiHash, "api-hash", "h", "", "Telegram API hash")
	fl.StringVarP(&f.phone, "phone", "p", "", "phone number in international format")
	fl.StringVarP(&f.code, "code", "c", "", "login code, if already received")
	fl.StringVarP(&f.password, "password", "w", "", "two-factor authentication password, if enabled")
	fl.StringVarP(&f.sessionFile, "session-file", "s", config.DefaultSessionFile, "path to session file")
	fl.StringVarP(&f.target, "target", "t", "", "recipient: @username or +phone from your contacts")
	fl.StringVarP(&f.message, "message", "m", "", "message to send")
	fl.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fl.StringVar(&f.logFile, "log-file", "", "log file, or stderr (default "+defaultLogPath()+")")
	fl.DurationVar(&f.connectTimeout, "connect-timeout", telegram.DefaultConnectTimeout, "how long to wait for a connection")

	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

// options merges flags over the config file.
func (f *flags) options(cmd *cobra.Command, cfg *config.Config) app.Options {
	creds := config.Credentials{
		APIID:       f.apiID,
		APIHash:     firstNonEmpty(f.apiHash, cfg.Telegram.APIHash),
		Phone:       firstNonEmpty(f.phone, cfg.Telegram.Phone),
		Code:        f.code,
		Password:    f.password,
		SessionPath: f.sessionFile,
	}
	if creds.APIID == 0 {
		creds.APIID = cfg.Telegram.APIID
	}
	if !cmd.Flags().Changed("session-file") && cfg.Telegram.SessionFile != "" {
		creds.SessionPath = cfg.Telegram.SessionFile
	}

	return app.Options{
		Credentials: creds,
		Target:      f.target,
		Message:     f.message,
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOptional(config.DefaultPath())
}

func defaultLogPath() string {
	return filepath.Join(config.Dir(), "tgsend.log")
}

func newLogger(level, path string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	if path == "" {
		path = defaultLogPath()
	}
	if path != "stderr" && path != "stdout" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = lvl
	logCfg.OutputPaths = []string{path}
	logCfg.ErrorOutputPaths = []string{path}
	logger, err := logCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

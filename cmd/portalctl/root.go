package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"portalConsole/internal/config"
	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/application/usecase"
	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/modules/portal/infrastructure"
	"portalConsole/internal/shared/logging"
)

// options holds the flags shared by every subcommand.
type options struct {
	baseURL     string
	queryPath   string
	commandPath string
	csrfCookie  string
	host        string
	envHost     string
	version     string
	cookies     []string
	timeout     time.Duration
	output      string
	logLevel    string

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	catalog *usecase.Catalog
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &options{
		in:      bufio.NewReader(in),
		out:     out,
		errOut:  errOut,
		catalog: usecase.DefaultCatalog(),
	}
	defaults := config.Default()
	if cfg, err := config.Load(); err == nil {
		defaults = cfg
	} else {
		fmt.Fprintf(errOut, "config load warning: %v\n", err)
	}

	root := &cobra.Command{
		Use:   "portalctl",
		Short: "Query and manage light-portal admin entities",
		Long: `portalctl drives the same list views the admin console serves,
against the portal query and command endpoints.

Credentials are passed as cookies, e.g. --cookie accessToken=... --cookie csrf=...`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			slog.SetDefault(logging.New(opts.errOut, logging.Config{Level: opts.logLevel, Component: "portalctl"}))
			switch opts.output {
			case "json", "table":
				return nil
			default:
				return fmt.Errorf("unknown output %q: want json or table", opts.output)
			}
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", defaults.Portal.BaseURL, "portal base URL")
	flags.StringVar(&opts.queryPath, "query-path", defaults.Portal.QueryPath, "query endpoint path")
	flags.StringVar(&opts.commandPath, "command-path", defaults.Portal.CommandPath, "command endpoint path")
	flags.StringVar(&opts.csrfCookie, "csrf-cookie", defaults.Portal.CSRFCookie, "cookie holding the CSRF token")
	flags.StringVar(&opts.host, "host", "", "tenant host id the lists are scoped to")
	flags.StringVar(&opts.envHost, "envelope-host", defaults.Portal.EnvelopeHost, "envelope host routing field")
	flags.StringVar(&opts.version, "envelope-version", defaults.Portal.Version, "envelope version")
	flags.StringArrayVar(&opts.cookies, "cookie", nil, "session cookie as name=value (repeatable)")
	flags.DurationVar(&opts.timeout, "timeout", defaults.Portal.Timeout, "portal request timeout (0 disables)")
	flags.StringVarP(&opts.output, "output", "o", "table", "output format: table or json")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newEntitiesCmd(opts),
		newListCmd(opts),
		newDeleteCmd(opts),
		newFreshCmd(opts),
		newSubmitCmd(opts),
	)
	return root
}

func (o *options) portal() (port.Portal, error) {
	cookies, err := parseCookies(o.cookies)
	if err != nil {
		return nil, err
	}
	client, err := infrastructure.NewSessionHTTPClient(o.baseURL, cookies)
	if err != nil {
		return nil, err
	}
	return infrastructure.NewPortalHTTPClient(infrastructure.PortalClientConfig{
		BaseURL:     o.baseURL,
		QueryPath:   o.queryPath,
		CommandPath: o.commandPath,
		CSRFCookie:  o.csrfCookie,
		Timeout:     o.timeout,
	}, client), nil
}

// open builds an unmounted view for entity. Input is committed immediately.
func (o *options) open(entity string, autoAccept bool) (usecase.Entry, usecase.View, error) {
	entry, err := o.catalog.Lookup(entity)
	if err != nil {
		return usecase.Entry{}, nil, err
	}
	portal, err := o.portal()
	if err != nil {
		return usecase.Entry{}, nil, err
	}
	presenter := newTerminalPresenter(o.in, o.out, o.errOut, autoAccept)
	view := entry.Open(domain.Session{ID: "portalctl", HostID: o.host}, portal, usecase.ControllerOptions{
		ViewID:    "portalctl",
		Debounce:  -1,
		Host:      o.envHost,
		Version:   o.version,
		Confirmer: presenter,
		Notifier:  presenter,
		Navigator: presenter,
	})
	return entry, view, nil
}

func parseCookies(raw []string) ([]*http.Cookie, error) {
	cookies := make([]*http.Cookie, 0, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid cookie %q: want name=value", pair)
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: strings.TrimSpace(value)})
	}
	return cookies, nil
}

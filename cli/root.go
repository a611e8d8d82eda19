// Package cli holds the cobra commands. With no subcommand postbox starts
// the terminal client; every other command drives the same view state
// machines headless and prints the outcome.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deemkeen/postbox/app"
	"github.com/deemkeen/postbox/ui"
	"github.com/deemkeen/postbox/util"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// tuiLogFile receives the terminal client's logs when no logFile is set.
const tuiLogFile = "postbox.log"

var errNoTerminal = errors.New("the terminal client needs an interactive terminal; see 'postbox --help' for headless commands")

type Cli struct {
	ApiUrl   string
	ChatUrl  string
	Database string
	LogLevel string
	NoColor  bool

	conf      *util.AppConfig
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	c := &Cli{}

	cmd := &cobra.Command{
		Use:          util.Name,
		Short:        "postbox terminal client for posts, profiles and chat",
		Version:      util.GetVersion(),
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the terminal client
  postbox

  # Headless commands
  postbox login --username alice
  postbox post 01JB8Z...
  postbox profile alice --tab followers
  postbox feed alice --format atom > alice.xml

  # Serve a local backend with demo data
  postbox devserver --seed
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd, cmd.Root() == cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.ApiUrl, "api-url", "", "Backend base URL (overrides apiUrl)")
	flags.StringVar(&c.ChatUrl, "chat-url", "", "Chat websocket URL (overrides chatUrl)")
	flags.StringVar(&c.Database, "database", "", "Session database file (overrides database)")
	flags.StringVar(&c.LogLevel, "log-level", "", "Log level (overrides logLevel)")
	flags.BoolVar(&c.NoColor, "no-color", false, "Disable colours")

	cmd.AddCommand(newLoginCmd(c))
	cmd.AddCommand(newLogoutCmd(c))
	cmd.AddCommand(newCheckCmd(c))
	cmd.AddCommand(newPostCmd(c))
	cmd.AddCommand(newCreateCmd(c))
	cmd.AddCommand(newEditCmd(c))
	cmd.AddCommand(newDeleteCmd(c))
	cmd.AddCommand(newProfileCmd(c))
	cmd.AddCommand(newHomeCmd(c))
	cmd.AddCommand(newSearchCmd(c))
	cmd.AddCommand(newFeedCmd(c))
	cmd.AddCommand(newDevServerCmd(c))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup reads the configuration, applies flag overrides and opens the log
// sink. The terminal client always logs to a file.
func (c *Cli) setup(cmd *cobra.Command, tui bool) error {
	conf, err := util.ReadConf()
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		conf.Conf.ApiUrl = c.ApiUrl
	}
	if flags.Changed("chat-url") {
		conf.Conf.ChatUrl = c.ChatUrl
	}
	if flags.Changed("database") {
		conf.Conf.Database = c.Database
	}
	if flags.Changed("log-level") {
		conf.Conf.LogLevel = c.LogLevel
	}
	if flags.Changed("no-color") {
		conf.Conf.NoColor = c.NoColor
	}
	if tui && conf.Conf.LogFile == "" {
		conf.Conf.LogFile = tuiLogFile
	}

	closer, err := util.ConfigureLogging(conf)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	c.conf = conf
	c.logCloser = closer
	return nil
}

func (c *Cli) teardown() error {
	if c.logCloser == nil {
		return nil
	}
	err := c.logCloser.Close()
	c.logCloser = nil
	return err
}

// open builds a headless app: no chat, navigation recorded.
func (c *Cli) open() (*app.App, *pathRecorder, error) {
	nav := &pathRecorder{}
	a, err := app.New(c.conf, app.Options{Nav: nav, NoChat: true})
	if err != nil {
		return nil, nil, err
	}
	return a, nav, nil
}

func (c *Cli) runTUI() error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errNoTerminal
	}

	bridge := ui.NewBridge()
	a, err := app.New(c.conf, app.Options{Nav: bridge})
	if err != nil {
		return err
	}

	runErr := ui.Run(a, bridge)
	if err := a.Close(); err != nil {
		util.NewLogger("cli").WithError(err).Warn("shutdown")
	}
	return runErr
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no config or log file needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), util.GetNameAndVersion())
		},
	}
}

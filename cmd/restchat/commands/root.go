package commands

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"restchat/internal/app"
	"restchat/internal/cache"
	"restchat/internal/domain"
)

var (
	home    string
	server  string
	verbose bool

	appCtx *app.Wire
)

const requestTimeout = 15 * time.Second

func Execute() error {
	root := &cobra.Command{
		Use:           "restchat",
		Short:         "Chat service client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				home = viper.GetString("home")
			}
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".restchat")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if server == "" {
				server = viper.GetString("server")
			}

			logger := zap.NewNop()
			if verbose {
				var err error
				logger, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
			}

			var err error
			appCtx, err = app.NewWire(app.Config{
				Home:      home,
				ServerURL: server,
				Logger:    logger,
			})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.restchat)")
	root.PersistentFlags().StringVar(&server, "server", "", "chat service base URL (e.g. http://127.0.0.1:8000)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	_ = viper.BindPFlag("home", root.PersistentFlags().Lookup("home"))
	_ = viper.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	viper.SetEnvPrefix("restchat")
	viper.AutomaticEnv()

	// Optional config file: ~/.restchat/config.yaml or the working dir.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.restchat")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	root.AddCommand(
		loginCmd(), logoutCmd(), registerCmd(), whoamiCmd(),
		chatsCmd(), messagesCmd(), membersCmd(), usersCmd(),
	)
	return root.Execute()
}

// requestContext bounds one command's remote calls.
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// await drains a subscription until its entry settles, then closes it.
func await(sub *cache.Subscription) (cache.Snapshot, error) {
	defer sub.Close()
	for snap := range sub.Updates() {
		switch snap.Status {
		case cache.StatusReady:
			return snap, nil
		case cache.StatusError:
			return snap, snap.Err
		}
	}
	return cache.Snapshot{}, errors.New("subscription closed before a result arrived")
}

// currentIdentity resolves the logged-in user or fails with a login hint.
func currentIdentity(ctx context.Context) (domain.Identity, error) {
	sub, ok := appCtx.Identity.Current(ctx)
	if !ok {
		return domain.Identity{}, errors.New("not logged in (run: restchat login)")
	}
	snap, err := await(sub)
	if err != nil {
		return domain.Identity{}, err
	}
	return snap.Value.(domain.Identity), nil
}

package cli

import (
	"os"
	"time"

	"product-catalog/internal/client"
	"product-catalog/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// EnvAPIURL names the environment variable holding the API base URL
const EnvAPIURL = "CATALOG_API_URL"

type app struct {
	apiURL  string
	timeout time.Duration
	verbose bool

	api    client.ProductAPI
	logger *zap.Logger
}

// NewRootCommand builds the catalogctl command tree. A nil api means a
// client.Client is built from the --api-url flag on every run.
func NewRootCommand(api client.ProductAPI) *cobra.Command {
	a := &app{api: api}

	defaultURL := os.Getenv(EnvAPIURL)
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage the product catalog from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = logger.NewCLI(cmd.ErrOrStderr(), a.verbose)
			if api == nil {
				a.api = client.New(a.apiURL, client.WithTimeout(a.timeout))
			}
			a.logger.Debug("Using catalog API", zap.String("url", a.apiURL))
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", defaultURL, "catalog API base URL (env "+EnvAPIURL+")")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 10*time.Second, "request timeout")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		a.newListCommand(),
		a.newGetCommand(),
		a.newCreateCommand(),
		a.newUpdateCommand(),
		a.newDeleteCommand(),
	)

	return root
}

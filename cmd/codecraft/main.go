package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/illegalcall/codecraft/pkg/dashboard"
)

const tokenEnv = "CODECRAFT_TOKEN"

type options struct {
	apiURL    string
	token     string
	tokenFile string
	timeout   time.Duration
}

func (o *options) client() *dashboard.Client {
	token := o.token
	if token == "" {
		token = os.Getenv(tokenEnv)
	}
	if token == "" {
		if raw, err := os.ReadFile(o.tokenFile); err == nil {
			token = strings.TrimSpace(string(raw))
		}
	}
	return dashboard.NewClient(o.apiURL, dashboard.WithToken(token))
}

func (o *options) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(o.tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	return os.WriteFile(o.tokenFile, []byte(token+"\n"), 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codecraft-token"
	}
	return filepath.Join(home, ".codecraft", "token")
}

// newRootCmd builds the command tree writing to out.
func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "codecraft",
		Short: "CodeCraft AI command line client",
		Long: `Generate, manage and deploy CodeCraft projects from the terminal.

Authenticate once with 'codecraft login'; the session token is stored in
~/.codecraft/token unless --token or CODECRAFT_TOKEN is set.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	apiURL := os.Getenv("CODECRAFT_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", apiURL, "CodeCraft API base URL (or set CODECRAFT_API_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "Session token (or set "+tokenEnv+")")
	rootCmd.PersistentFlags().StringVar(&opts.tokenFile, "token-file", defaultTokenFile(), "Where login stores the session token")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout")

	rootCmd.AddCommand(
		newLoginCmd(opts),
		newWhoamiCmd(opts),
		newGenerateCmd(opts),
		newProjectsCmd(opts),
		newDeployCmd(opts),
		newTemplatesCmd(opts),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		if errors.Is(err, dashboard.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "Session expired. Run 'codecraft login' to sign in again.")
		}
		os.Exit(1)
	}
}

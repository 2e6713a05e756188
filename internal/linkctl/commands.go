package linkctl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cli struct {
	configPath string
	cfg        *Config
}

// NewRootCmd builds the linkctl command tree
func NewRootCmd(version string) *cobra.Command {
	app := &cli{}

	root := &cobra.Command{
		Use:   "linkctl",
		Short: "Issue and check external experiment-session links",
		Long: `linkctl asks the session API for signed external links and prints the
viewer URL to hand to participants.

Examples:
  linkctl sign --session S1                       # signed link, default expiry
  linkctl sign --session S1 --exp 3600 -o json
  linkctl sign --session S1 --sign=false          # plain sessionId link
  linkctl get S1 --token <token>                  # fetch the record a link resolves to

Config: ~/.sessionlink/linkctl.yaml (override with --config)
Env:    LINKCTL_API_BASE, LINKCTL_FRONTEND_BASE, LINKCTL_EXP_SEC, LINKCTL_OUTPUT`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.loadConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&app.configPath, "config", DefaultConfigPath(), "Config file path")
	root.PersistentFlags().String("api", "", "Session API base URL")
	root.PersistentFlags().String("frontend", "", "Viewer base URL")
	root.PersistentFlags().StringP("output", "o", "", "Output format: text, json or yaml")

	root.AddCommand(app.signCmd())
	root.AddCommand(app.getCmd())
	root.AddCommand(app.initCmd())

	return root
}

func (a *cli) loadConfig(cmd *cobra.Command) error {
	v, err := NewViper(a.configPath)
	if err != nil {
		return err
	}

	bindings := map[string]string{
		"api_base":      "api",
		"frontend_base": "frontend",
		"output":        "output",
		"exp_sec":       "exp",
	}
	if err := bindFlags(v, cmd, bindings); err != nil {
		return err
	}

	cfg, err := Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, bindings map[string]string) error {
	for key, flagName := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flagName, err)
		}
	}
	return nil
}

func (a *cli) signCmd() *cobra.Command {
	var (
		sessionID string
		userID    string
		sign      bool
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Create a viewer link for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID = strings.TrimSpace(sessionID)
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}

			result := &LinkResult{SessionID: sessionID}

			if sign {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()

				resp, err := NewClient(a.cfg.APIBase).Sign(ctx, SignRequest{
					SessionID: sessionID,
					UserID:    strings.TrimSpace(userID),
					ExpSec:    a.cfg.ExpSec,
				})
				if err != nil {
					return fmt.Errorf("failed to sign link: %w", err)
				}
				result.Token = resp.Token
				result.ExpiresIn = resp.ExpiresIn
			}

			link, err := BuildViewerURL(a.cfg.FrontendBase, a.cfg.APIBase, sessionID, result.Token)
			if err != nil {
				return err
			}
			result.URL = link

			return Render(cmd.OutOrStdout(), a.cfg.Output, result)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to link (required)")
	cmd.Flags().StringVar(&userID, "user", "", "Optional user id embedded in the token")
	cmd.Flags().Int("exp", DefaultExpSec, "Link lifetime in seconds")
	cmd.Flags().BoolVar(&sign, "sign", true, "Request a signed token (false prints a plain sessionId link)")

	return cmd
}

func (a *cli) getCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "get <session-id>",
		Short: "Fetch the record an external link resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			record, err := NewClient(a.cfg.APIBase).GetSession(ctx, args[0], token)
			if err != nil {
				return fmt.Errorf("failed to fetch session: %w", err)
			}
			return Render(cmd.OutOrStdout(), a.cfg.Output, record)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Signed link token sent as a bearer credential")

	return cmd
}

func (a *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the resolved settings to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := Save(a.cfg, a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "📁 Config written to %s\n", a.configPath)
			return nil
		},
	}
}

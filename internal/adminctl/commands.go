package adminctl

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	defaultServer = "http://localhost:3000"
	secretEnv     = "VASIHAT_ADMIN_SECRET"
)

type options struct {
	server string
	secret string
}

// NewRootCommand builds the vasihatctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "vasihatctl",
		Short:         "Operate a Vasihat Nama server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", defaultServer, "admin HTTP address of the server")
	root.PersistentFlags().StringVar(&opts.secret, "secret", "", "admin secret (prompted when empty and "+secretEnv+" is unset)")

	root.AddCommand(
		newSweepCmd(opts),
		newGrantCmd(opts),
		newStatsCmd(opts),
		newUsersCmd(opts),
	)
	return root
}

func (o *options) client(cmd *cobra.Command) (*Client, error) {
	secret := o.secret
	if secret == "" {
		secret = os.Getenv(secretEnv)
	}
	if secret == "" {
		s, err := GetSecret(cmd.ErrOrStderr())
		if err != nil {
			return nil, fmt.Errorf("read secret: %w", err)
		}
		secret = s
	}
	return NewClient(o.server, secret, nil), nil
}

func newSweepCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the dead man's switch sweep now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
			sp.Suffix = " Running sweep..."
			sp.Start()
			res, err := c.Sweep(cmd.Context())
			sp.Stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d overdue user(s), %d nominee(s) granted\n",
				color.GreenString("✓"), res.TriggeredCount, res.GrantedCount)
			for _, u := range res.OverdueUsers {
				fmt.Fprintf(out, "  %s %d %s\n", color.CyanString("→"), u.ID, u.Name)
			}
			if res.FailedCount > 0 {
				fmt.Fprintf(out, "%s %d user(s) failed\n", color.RedString("✗"), res.FailedCount)
				for _, f := range res.Failures {
					fmt.Fprintf(out, "  user %d: %s\n", f.UserID, f.Error)
				}
			}
			return nil
		},
	}
}

func newGrantCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "grant <nominee-id>",
		Short: "Grant a nominee access regardless of the owner's check-ins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid nominee id %q", args[0])
			}
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			if err := c.Grant(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s nominee %d granted\n", color.GreenString("✓"), id)
			return nil
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show user, file and OTP totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			s, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users: %d\nfiles: %d\notps:  %d\n", s.Users, s.Files, s.OTPs)
			return nil
		},
	}
}

func newUsersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered users with their check-in state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			users, err := c.Users(cmd.Context())
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), users)
		},
	}
}

// Command gj is a CLI client for the gratitude journal API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/and161185/gratitude-journal/internal/convert"
	"github.com/and161185/gratitude-journal/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries what every subcommand needs.
type cli struct {
	v  *viper.Viper
	hc *http.Client
}

func (c *cli) client() *apiClient { return newClient(c.v.GetString("server"), c.hc) }

func (c *cli) reqCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.v.GetDuration("timeout"))
}

// authed returns a client carrying the saved access token.
func (c *cli) authed() (*apiClient, error) {
	tok, err := loadToken()
	if err != nil {
		return nil, err
	}
	api := c.client()
	api.bearer = tok
	return api, nil
}

func newRootCmd(hc *http.Client) *cobra.Command {
	app := &cli{v: viper.New(), hc: hc}
	app.v.SetEnvPrefix("GJ")
	_ = app.v.BindEnv("server", "GJ_SERVER")

	root := &cobra.Command{
		Use:           "gj",
		Short:         "Gratitude journal CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.String("server", "http://localhost:8080", "API base URL (also GJ_SERVER)")
	pf.Duration("timeout", 30*time.Second, "request timeout")
	_ = app.v.BindPFlag("server", pf.Lookup("server"))
	_ = app.v.BindPFlag("timeout", pf.Lookup("timeout"))

	root.AddCommand(
		app.versionCmd(),
		app.registerCmd(),
		app.loginCmd(),
		app.refreshCmd(),
		app.logoutCmd(),
		app.whoamiCmd(),
		app.validateCmd(),
		app.entriesCmd(),
	)
	return root
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gj %s (%s)\n", version, buildDate)
		},
	}
}

func (c *cli) registerCmd() *cobra.Command {
	var req convert.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and save its token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.reqCtx(cmd)
			defer cancel()
			var out convert.AuthResponse
			resp, err := c.client().do(ctx, http.MethodPost, "/auth/register", req, &out)
			if err != nil {
				return err
			}
			if err := saveSession(out.AccessToken, refreshFrom(resp)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var req convert.SignInRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.reqCtx(cmd)
			defer cancel()
			var out convert.AuthResponse
			resp, err := c.client().do(ctx, http.MethodPost, "/auth/signin", req, &out)
			if err != nil {
				return err
			}
			if err := saveSession(out.AccessToken, refreshFrom(resp)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the saved refresh token for a new access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tf, err := readToken()
			if err != nil {
				return err
			}
			if tf.RefreshToken == "" {
				return errLoginRequired
			}
			ctx, cancel := c.reqCtx(cmd)
			defer cancel()
			api := c.client()
			api.refresh = tf.RefreshToken
			var out convert.AccessTokenResponse
			if _, err := api.do(ctx, http.MethodPost, "/auth/refresh", nil, &out); err != nil {
				return err
			}
			if err := saveSession(out.AccessToken, tf.RefreshToken); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The server call only clears the cookie; a failure is not fatal.
			if api, err := c.authed(); err == nil {
				ctx, cancel := c.reqCtx(cmd)
				_, _ = api.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
				cancel()
			}
			if err := removeToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.authed()
			if err != nil {
				return err
			}
			if offline {
				id, ok := token.SubjectUserID(api.bearer)
				if !ok {
					return errLoginRequired
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user id %d\n", id)
				return nil
			}
			ctx, cancel := c.reqCtx(cmd)
			defer cancel()
			var out convert.UserResponse
			if _, err := api.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "decode the saved token instead of asking the server")
	return cmd
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Ask the server whether the saved token is still good",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.authed()
			if err != nil {
				return err
			}
			ctx, cancel := c.reqCtx(cmd)
			defer cancel()
			var out convert.ValidationResponse
			if _, err := api.do(ctx, http.MethodGet, "/auth/validate", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

// ---- utils ----

func saveSession(access, refresh string) error {
	return saveToken(tokenFile{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    tokenExpiry(access),
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

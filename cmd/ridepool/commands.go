package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/ridepool-client/internal/api"
	"github.com/example/ridepool-client/internal/app"
	"github.com/example/ridepool-client/internal/config"
	"github.com/example/ridepool-client/internal/fare"
	"github.com/example/ridepool-client/internal/gateway"
	"github.com/example/ridepool-client/internal/geo"
	"github.com/example/ridepool-client/internal/logging"
	"github.com/example/ridepool-client/internal/models"
)

// withApp builds the client core for one command. The background probe loop
// and realtime channel are not started.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: os.Stderr})
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Probe the backend and show availability and session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				reachable := a.Monitor.CheckNow(ctx)
				st, err := a.Sessions.Resume(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Backend:  %s\n", a.Config.APIURL)
				if reachable {
					fmt.Fprintln(out, "Status:   reachable")
				} else {
					fmt.Fprintln(out, "Status:   unreachable (demo mode)")
				}
				fmt.Fprintf(out, "Session:  %s\n", st.Status)
				if st.Identity != nil {
					fmt.Fprintf(out, "User:     %s <%s> (%s)\n", st.Identity.DisplayName(), st.Identity.User.Email, st.Role)
				}
				return nil
			})
		},
	}
}

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; demo accounts are used when the backend is down",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				id, err := a.Sessions.Login(ctx, models.Credentials{Email: email, Password: password})
				if err != nil {
					return err
				}
				suffix := ""
				if id.Demo {
					suffix = " [demo]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)%s\n", id.DisplayName(), id.Role(), suffix)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Sessions.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the stored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				st := a.Sessions.State(ctx)
				if st.Identity == nil {
					return fmt.Errorf("not signed in")
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"user": st.Identity.User, "demo": st.Identity.Demo})
			})
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [path]",
		Short: "GET an API path through the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rawCall(cmd, http.MethodGet, args[0], "")
		},
	}
}

func postCmd() *cobra.Command {
	var data, method string
	cmd := &cobra.Command{
		Use:   "post [path]",
		Short: "Send a JSON body to an API path through the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rawCall(cmd, method, args[0], data)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodPost, "HTTP method (POST, PUT, DELETE)")
	return cmd
}

func rawCall(cmd *cobra.Command, method, path, data string) error {
	var body any
	if strings.TrimSpace(data) != "" {
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("--data is not valid JSON")
		}
		body = json.RawMessage(data)
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		env, err := a.Gateway.Do(ctx, gateway.Request{Method: method, Path: path, Body: body})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), env)
	})
}

func ridesCmd() *cobra.Command {
	var status string
	var page, limit int
	cmd := &cobra.Command{
		Use:   "rides",
		Short: "List the signed-in rider's bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				list, err := a.API.UserRides(ctx, status, api.Page{Page: page, Limit: limit})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only bookings in this status")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "bookings per page")
	return cmd
}

func fareCmd() *cobra.Command {
	var from, to string
	var pool bool
	cmd := &cobra.Command{
		Use:   "fare",
		Short: "Estimate a fare locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			pickup, err := parsePoint(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			dropoff, err := parsePoint(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), fare.Estimate(pickup, dropoff, pool))
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "pickup as lat,lng")
	cmd.Flags().StringVar(&to, "to", "", "dropoff as lat,lng")
	cmd.Flags().BoolVar(&pool, "pool", false, "apply the pooling discount")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func parsePoint(s string) (models.Location, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.Location{}, fmt.Errorf("expected lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("bad latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("bad longitude: %w", err)
	}
	p := models.Location{Lat: lat, Lng: lng}
	if !geo.ValidPoint(p) {
		return models.Location{}, fmt.Errorf("point %q out of range", s)
	}
	return p, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local proxy for a browser UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if _, err := a.Start(ctx); err != nil {
					a.Log.Warn().Err(err).Msg("resume session")
				}
				return a.Serve(ctx)
			})
		},
	}
}

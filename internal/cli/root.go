package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/blace/internal/domain"
	"github.com/pscheid92/blace/internal/platform/version"
	"github.com/spf13/cobra"
)

const defaultServer = "http://127.0.0.1:8000"

var errLimitReached = errors.New("update limit reached")

// ClientFunc builds an API client from the command's flags.
type ClientFunc func(cmd *cobra.Command) *Client

// NewRoot constructs the blacectl root command and registers its subcommands.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "blacectl",
		Short:         "Client for a shared pixel canvas server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("server", serverFromEnv(), "Server base URL (env BLACE_SERVER)")
	root.PersistentFlags().Duration("timeout", 10*time.Second, "Timeout for REST requests")

	clientFor := func(cmd *cobra.Command) *Client {
		server, _ := cmd.Flags().GetString("server")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		return NewClient(server, timeout)
	}

	root.AddCommand(
		newCreateCommand(clientFor),
		newListCommand(clientFor),
		newInfoCommand(clientFor),
		newDataCommand(clientFor),
		newPutCommand(clientFor),
		newWatchCommand(clientFor),
		newVersionCommand(),
	)
	return root
}

func serverFromEnv() string {
	if v := os.Getenv("BLACE_SERVER"); v != "" {
		return v
	}
	return defaultServer
}

func newCreateCommand(clientFor ClientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create NAME WIDTH HEIGHT",
		Short: "Create a game with an all-white canvas",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid width %q", args[1])
			}
			height, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid height %q", args[2])
			}

			game, err := clientFor(cmd).CreateGame(cmd.Context(), args[0], width, height)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), game.ID)
			return nil
		},
	}
	return cmd
}

func newListCommand(clientFor ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all games",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			games, err := clientFor(cmd).ListGames(cmd.Context())
			if err != nil {
				return err
			}
			printGames(cmd.OutOrStdout(), games)
			return nil
		},
	}
}

func newInfoCommand(clientFor ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "info GAME_ID",
		Short: "Show a game's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			game, err := clientFor(cmd).GameInfo(cmd.Context(), gameID)
			if IsNotFound(err) {
				return fmt.Errorf("game %s not found", gameID)
			}
			if err != nil {
				return err
			}
			printGames(cmd.OutOrStdout(), []domain.Game{*game})
			return nil
		},
	}
}

func newDataCommand(clientFor ClientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data GAME_ID",
		Short: "Print a game's canvas",
		Long: `Print a game's canvas.

By default the canvas is printed as one row per line with each cell as #rrggbb.
Use --json to print the raw response instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			data, err := clientFor(cmd).GameData(cmd.Context(), gameID)
			if IsNotFound(err) {
				return fmt.Errorf("game %s not found", gameID)
			}
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(data)
			}
			printCanvas(cmd.OutOrStdout(), data)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the raw JSON response")
	return cmd
}

func newPutCommand(clientFor ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "put GAME_ID X Y COLOR",
		Short: "Set one pixel",
		Long: `Set one pixel.

COLOR is a name (red, green, blue, black, white, yellow, cyan, magenta),
a hex triplet such as #ff8800, or decimal components such as 255,136,0.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			x, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid x %q", args[1])
			}
			y, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid y %q", args[2])
			}
			pixel, err := ParseColor(args[3])
			if err != nil {
				return err
			}

			msg, err := clientFor(cmd).PutPixel(cmd.Context(), gameID, x, y, pixel)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newWatchCommand(clientFor ClientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch GAME_ID",
		Short: "Stream live pixel updates of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			seen := 0
			out := cmd.OutOrStdout()
			err = clientFor(cmd).Watch(ctx, gameID, func(u domain.PixelUpdate) error {
				_, _ = fmt.Fprintf(out, "%d,%d %s\n", u.X, u.Y, FormatColor(u.Pixel))
				seen++
				if limit > 0 && seen >= limit {
					return errLimitReached
				}
				return nil
			})
			if errors.Is(err, errLimitReached) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().Int("limit", 0, "Stop after this many updates (0 streams until interrupted)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "blacectl", version.Get())
		},
	}
}

func parseGameID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid game id %q", s)
	}
	return id, nil
}

func printGames(w io.Writer, games []domain.Game) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tSIZE\tCREATED")
	for _, g := range games {
		created := time.Unix(g.CreatedAt, 0).UTC().Format(time.RFC3339)
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\n", g.ID, g.Name, g.Width, g.Height, created)
	}
	_ = tw.Flush()
}

func printCanvas(w io.Writer, data *domain.GameData) {
	width := data.Game.Width
	for y := range data.Game.Height {
		for x := range width {
			if x > 0 {
				_, _ = io.WriteString(w, " ")
			}
			_, _ = io.WriteString(w, FormatColor(data.Canvas[domain.Offset(width, x, y)]))
		}
		_, _ = io.WriteString(w, "\n")
	}
}

// Execute runs the root command with a background context.
func Execute() error {
	return NewRoot().ExecuteContext(context.Background())
}

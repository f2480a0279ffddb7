package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"planora/internal/token"
)

type tokenOptions struct {
	Secret  string
	TTLDays int
	BaseURL string
}

func (o *tokenOptions) codec() (*token.Codec, error) {
	secret := o.Secret
	if secret == "" {
		secret = os.Getenv("RSVP_TOKEN_SECRET")
	}
	if secret == "" {
		return nil, fmt.Errorf("token secret required: pass --secret or set RSVP_TOKEN_SECRET")
	}
	opts := []token.Option{}
	if o.TTLDays > 0 {
		opts = append(opts, token.WithTTL(time.Duration(o.TTLDays)*24*time.Hour))
	}
	return token.NewCodec([]byte(secret), opts...), nil
}

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint and inspect RSVP link tokens",
	}
	cmd.PersistentFlags().StringVar(&opts.Secret, "secret", "", "HMAC secret (defaults to RSVP_TOKEN_SECRET)")
	cmd.PersistentFlags().IntVar(&opts.TTLDays, "ttl-days", 0, "token lifetime in days (default 90)")

	generate := &cobra.Command{
		Use:   "generate <guest-id> <event-id>",
		Short: "Mint a personal RSVP link token for a guest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenGenerate(cmd, opts, args)
		},
	}
	generate.Flags().StringVar(&opts.BaseURL, "base-url", "", "print a full RSVP link instead of the bare token")

	inspect := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenInspect(cmd, opts, args[0])
		},
	}

	cmd.AddCommand(generate)
	cmd.AddCommand(inspect)
	return cmd
}

func runTokenGenerate(cmd *cobra.Command, opts *tokenOptions, args []string) error {
	guestID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || guestID < 1 {
		return fmt.Errorf("guest-id must be a positive integer")
	}
	eventID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || eventID < 1 {
		return fmt.Errorf("event-id must be a positive integer")
	}

	codec, err := opts.codec()
	if err != nil {
		return err
	}
	tok, err := codec.Generate(guestID, eventID)
	if err != nil {
		return err
	}

	if opts.BaseURL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(opts.BaseURL, "/")+"/rsvp/"+tok)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}

func runTokenInspect(cmd *cobra.Command, opts *tokenOptions, tok string) error {
	codec, err := opts.codec()
	if err != nil {
		return err
	}
	claims, err := codec.Verify(tok)
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	out := struct {
		GuestID  int64     `json:"guest_id"`
		EventID  int64     `json:"event_id"`
		IssuedAt time.Time `json:"issued_at"`
	}{claims.GuestID, claims.EventID, claims.IssuedAt}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

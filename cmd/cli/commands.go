package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mauv0809/kingside/internal/auth"
	"github.com/spf13/cobra"
)

var (
	statusFilter  string
	accountNumber string
	bankCode      string
	tokenTTL      time.Duration
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(banksCmd)
	rootCmd.AddCommand(verifyAccountCmd)
	rootCmd.AddCommand(tournamentsCmd)
	rootCmd.AddCommand(tournamentCmd)
	rootCmd.AddCommand(prizeCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(tokenCmd)

	tournamentsCmd.Flags().StringVar(&statusFilter, "status", "", "Only list tournaments with this status")
	verifyAccountCmd.Flags().StringVar(&accountNumber, "account", "", "The 10 digit account number")
	verifyAccountCmd.Flags().StringVar(&bankCode, "bank", "", "The bank code")
	verifyAccountCmd.MarkFlagRequired("account")
	verifyAccountCmd.MarkFlagRequired("bank")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "How long the token stays valid")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List the banks withdrawals can be sent to",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/wallet/banks", nil)
	},
}

var verifyAccountCmd = &cobra.Command{
	Use:   "verify-account",
	Short: "Resolve the holder name of a bank account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/api/wallet/verify-account", map[string]string{
			"accountNumber": accountNumber,
			"bankCode":      bankCode,
		})
	},
}

var tournamentsCmd = &cobra.Command{
	Use:   "tournaments",
	Short: "List tournaments",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/api/tournaments/"
		if statusFilter != "" {
			endpoint += "?status=" + url.QueryEscape(statusFilter)
		}
		return performRequest(http.MethodGet, endpoint, nil)
	},
}

var tournamentCmd = &cobra.Command{
	Use:   "tournament [id]",
	Short: "Show one tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/tournaments/"+url.PathEscape(args[0]), nil)
	},
}

var prizeCmd = &cobra.Command{
	Use:   "prize [id]",
	Short: "Show the prize pool of a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/tournament-prize/"+url.PathEscape(args[0]), nil)
	},
}

var processCmd = &cobra.Command{
	Use:       "process [tournaments|compensations|withdrawals]",
	Short:     "Run one of the scheduled jobs now",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"tournaments", "compensations", "withdrawals"},
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/process"
		if args[0] != "tournaments" {
			endpoint += "/" + args[0]
		}
		return performRequest(http.MethodPost, endpoint, nil)
	},
}

// tokenCmd mints a bearer token locally with AUTH_JWT_SECRET, for testing
// the authenticated endpoints.
var tokenCmd = &cobra.Command{
	Use:   "token [profileId]",
	Short: "Issue a bearer token for a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := os.Getenv("AUTH_JWT_SECRET")
		if secret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is not set")
		}
		token, err := auth.NewVerifier(secret).Issue(args[0], tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func performRequest(method, endpoint string, payload any) error {
	target := host + endpoint
	if dryRun {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		target += sep + "dry_run=true"
	}
	fmt.Printf("Making request to %s\n", target)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := os.Getenv("KINGSIDE_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}

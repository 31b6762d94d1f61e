// Command gentoken prints a short-lived HS256 access token signed with
// SUPABASE_JWT_SECRET, for calling the admin API from curl during development.
//
//	go run ./scripts/gentoken -sub <principal> -email admin@example.com
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"handyman-recruitment-backend/config"
	"handyman-recruitment-backend/pkg/auth"
)

func main() {
	sub := flag.String("sub", "", "principal (JWT subject)")
	email := flag.String("email", "", "email claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if *sub == "" {
		*sub = cfg.BootstrapAdminPrincipal
	}
	if *sub == "" || cfg.SupabaseJWTSecret == "" {
		fmt.Fprintln(os.Stderr, "Error: -sub (or BOOTSTRAP_ADMIN_PRINCIPAL) and SUPABASE_JWT_SECRET are required")
		os.Exit(1)
	}

	token, err := auth.IssueHS256(cfg.SupabaseJWTSecret, *sub, *email, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

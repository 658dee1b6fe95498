// Command issue-token mints a bearer token for the admin or affiliate APIs.
package main

import (
	"betaffiliate/config"
	"betaffiliate/helpers"
	"flag"
	"fmt"
	"os"
)

func main() {
	role := flag.String("role", helpers.RoleAdmin, "token role: admin or affiliate")
	affiliateID := flag.Uint("affiliate", 0, "affiliate id (required for role affiliate)")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to JWT_TTL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *role != helpers.RoleAdmin && *role != helpers.RoleAffiliate {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}
	if *role == helpers.RoleAffiliate && *affiliateID == 0 {
		fmt.Fprintln(os.Stderr, "-affiliate is required for role affiliate")
		os.Exit(2)
	}

	lifetime := cfg.JWTTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := helpers.IssueToken(cfg.JWTSecret, *role, uint(*affiliateID), lifetime)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}

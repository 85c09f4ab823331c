package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/EvegeniyNekrasov/Nexo/internal/auth"
	"github.com/EvegeniyNekrasov/Nexo/internal/config"
)

// runToken mints a document token: server token -doc <fileId> [-scope edit].
func runToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	doc := fs.String("doc", "", "file id the token grants access to (* for all)")
	scope := fs.String("scope", string(auth.ScopeEdit), "view or edit")
	subject := fs.String("sub", "operator", "token subject")
	ttl := fs.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *doc == "" {
		fs.Usage()
		return fmt.Errorf("-doc is required")
	}

	svc := auth.NewService(cfg.JWTSecret, auth.WithTTL(*ttl))
	tok, err := svc.IssueToken(*subject, *doc, auth.Scope(*scope))
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, tok)
	fmt.Fprintf(os.Stderr, "expires %s\n", time.Now().Add(*ttl).Format(time.RFC3339))
	return nil
}

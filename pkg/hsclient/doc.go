// Package hsclient provides the primary entry point for constructing a
// Help Scout Mailbox API v2 client that implements the helpscout.Client
// interface.
//
// It wires configuration, the OAuth2 client_credentials token cache, the
// HTTP transport and the resource operations defined by the helpscout
// package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//	  "os"
//
//	  "github.com/fivetwenty-io/helpscout/pkg/helpscout"
//	  "github.com/fivetwenty-io/helpscout/pkg/hsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := hsclient.NewWithCredentials(ctx, os.Getenv("HELPSCOUT_CLIENT_ID"), os.Getenv("HELPSCOUT_CLIENT_SECRET"))
//	  if err != nil { log.Fatal(err) }
//
//	  id, err := cli.Create(ctx, "customers", map[string]string{"firstName": "Ada"}, nil)
//	  if err != nil { log.Fatal(err) }
//
//	  _, err = cli.AddNoteToConversation(ctx, "123456", "Followed up by phone")
//	  if err != nil { log.Fatal(err) }
//	  _ = id
//	}
//
// Sharing a token between clients
//
// Every client owns its token cache by default. Clients built from the same
// application credentials can share one:
//
//	cache := hsclient.NewTokenStore()
//	a, _ := hsclient.New(ctx, &helpscout.Config{ClientID: id, ClientSecret: secret, TokenCache: cache})
//	b, _ := hsclient.New(ctx, &helpscout.Config{ClientID: id, ClientSecret: secret, TokenCache: cache})
package hsclient

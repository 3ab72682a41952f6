// Package helpscout provides types, interfaces, and helpers for working with
// the Help Scout Mailbox API v2.
//
// # Overview
//
// The helpscout package defines the Client interface (generic create, get,
// list, update and delete over any resource type), the configuration, the
// typed errors and the list helpers. A concrete implementation is provided by
// the hsclient package, which wires the OAuth2 token cache, the transport and
// the resource operations.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/helpscout/pkg/helpscout"
//	  "github.com/fivetwenty-io/helpscout/pkg/hsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := hsclient.New(ctx, &helpscout.Config{ClientID: "id", ClientSecret: "secret"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Every customer, across all pages
//	  customers, err := cli.List(ctx, "customers", nil, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = customers
//	}
//
// # Lists
//
// List walks every page of a list endpoint with at least
// DefaultPageInterval between page requests and returns the items embedded
// under the object type. Use ListAs or GetAs to decode into your own types:
//
//	type Customer struct {
//	  ID        int    `json:"id"`
//	  FirstName string `json:"firstName"`
//	}
//
//	customers, err := helpscout.ListAs[Customer](ctx, cli, "customers", nil, nil)
//
// # Errors
//
// A failed token renewal is an AuthError, a response with status >= 400 is
// an APIError and a network failure is a TransportError. Helpers such as
// IsNotFound, IsUnauthorized and IsRateLimited branch on common cases.
//
// # Interceptors and metrics
//
// An InterceptorChain in Config runs hooks around every resource request.
// PrometheusMetrics installs a pair of interceptors that count requests and
// record latencies.
package helpscout

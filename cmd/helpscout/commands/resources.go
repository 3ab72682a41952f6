package commands

import (
	"fmt"
	"time"

	"github.com/fivetwenty-io/helpscout/pkg/helpscout"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var (
		queryPairs []string
		parentType string
		parentID   string
		maxPages   int
	)

	cmd := &cobra.Command{
		Use:   "list TYPE",
		Short: "List every resource of a type",
		Long: `Fetch every page of a resource collection and print the combined result.

Pages are requested one at a time, at most one every 200ms.`,
		Example: `  helpscout list customers
  helpscout list conversations --query status=active --query mailbox=123
  helpscout list threads --parent-type conversations --parent-id 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseKeyValues(queryPairs)
			if err != nil {
				return err
			}

			parent, err := parseParent(parentType, parentID)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if maxPages > 0 {
				items, err := helpscout.ListAll(ctx, rawPageFetcher{client: client}, args[0], parent.PathPrefix()+args[0], query,
					helpscout.PaginationOptions{Interval: pageInterval(), MaxPages: maxPages})
				if err != nil {
					return fmt.Errorf("failed to list %s: %w", args[0], err)
				}

				return outputResources(cmd.OutOrStdout(), items)
			}

			items, err := client.List(ctx, args[0], query, parent)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", args[0], err)
			}

			return outputResources(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().StringArrayVarP(&queryPairs, "query", "q", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&parentType, "parent-type", "", "parent resource type")
	cmd.Flags().StringVar(&parentID, "parent-id", "", "parent resource id")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop with an error after this many pages (0 means unlimited)")

	return cmd
}

// pageInterval returns the configured page interval or the default.
func pageInterval() time.Duration {
	if value := viper.GetString(KeyPageInterval); value != "" {
		if interval, err := parseDuration(value); err == nil {
			return interval
		}
	}

	return helpscout.DefaultPageInterval
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var (
		embed     []string
		subObject string
	)

	cmd := &cobra.Command{
		Use:   "get TYPE ID",
		Short: "Get a single resource",
		Long:  "Retrieve one resource by id, optionally embedding sub-resources or reading a sub-object",
		Example: `  helpscout get customers 100 --embed emails --embed phones
  helpscout get conversations 42 --sub threads`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			resource, err := client.Get(ctx, args[0], args[1], &helpscout.GetOptions{
				Embed:     embed,
				SubObject: subObject,
			})
			if err != nil {
				return fmt.Errorf("failed to get %s %s: %w", args[0], args[1], err)
			}

			return outputResource(cmd.OutOrStdout(), resource)
		},
	}

	cmd.Flags().StringSliceVar(&embed, "embed", nil, "sub-resources to embed (repeatable)")
	cmd.Flags().StringVar(&subObject, "sub", "", "sub-object path appended to the resource")

	return cmd
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var (
		data       string
		parentType string
		parentID   string
	)

	cmd := &cobra.Command{
		Use:   "create TYPE",
		Short: "Create a resource",
		Long:  "Create a resource from a JSON document and print the id the API assigned",
		Example: `  helpscout create customers --data '{"firstName":"Ada","lastName":"Lovelace"}'
  helpscout create threads --parent-type conversations --parent-id 42 --data @reply.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseData(data)
			if err != nil {
				return err
			}

			parent, err := parseParent(parentType, parentID)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			id, err := client.Create(ctx, args[0], payload, parent)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}

			return outputCreated(cmd.OutOrStdout(), args[0], id)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON payload, or @file to read it from a file")
	cmd.Flags().StringVar(&parentType, "parent-type", "", "parent resource type")
	cmd.Flags().StringVar(&parentID, "parent-id", "", "parent resource id")

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var (
		data       string
		patch      bool
		parentType string
		parentID   string
	)

	cmd := &cobra.Command{
		Use:   "update TYPE [ID]",
		Short: "Replace or patch a resource",
		Long: `Replace a resource with PUT, or apply a partial change with --patch.

Without an ID the PUT targets the collection path itself.`,
		Example: `  helpscout update customers 100 --data '{"firstName":"Ada","lastName":"Byron"}'
  helpscout update conversations 42 --patch --data '{"op":"replace","path":"/subject","value":"Hi"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseData(data)
			if err != nil {
				return err
			}

			parent, err := parseParent(parentType, parentID)
			if err != nil {
				return err
			}

			id := ""
			if len(args) == 2 {
				id = args[1]
			}

			ctx := commandContext(cmd)

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if patch {
				err = client.UpdatePatch(ctx, args[0], id, payload, parent)
			} else {
				err = client.UpdatePut(ctx, args[0], id, payload, parent)
			}

			if err != nil {
				return fmt.Errorf("failed to update %s %s: %w", args[0], id, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Successfully updated %s %s\n", args[0], id)

			return err
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON payload, or @file to read it from a file")
	cmd.Flags().BoolVar(&patch, "patch", false, "send a PATCH instead of a PUT")
	cmd.Flags().StringVar(&parentType, "parent-type", "", "parent resource type")
	cmd.Flags().StringVar(&parentID, "parent-id", "", "parent resource id")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete TYPE ID",
		Short: "Delete a resource",
		Long:  "Delete a resource by id. Asks for confirmation unless --force is given.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				err := confirm(cmd.OutOrStdout(), fmt.Sprintf("Really delete %s %s?", args[0], args[1]))
				if err != nil {
					return err
				}
			}

			ctx := commandContext(cmd)

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Delete(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to delete %s %s: %w", args[0], args[1], err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted %s %s\n", args[0], args[1])

			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}

// NewNoteCommand creates the note command.
func NewNoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "note CONVERSATION_ID TEXT",
		Short:   "Add a note to a conversation",
		Long:    "Add an internal note to a conversation and print the id of the created note",
		Example: `  helpscout note 42 "Called the customer back"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			id, err := client.AddNoteToConversation(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to add note to conversation %s: %w", args[0], err)
			}

			return outputCreated(cmd.OutOrStdout(), "notes", id)
		},
	}
}

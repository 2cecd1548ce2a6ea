package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/wire"
)

// OrgCmd returns the organization command group.
func OrgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage organizations",
	}
	cmd.AddCommand(orgCreateCmd(), orgListCmd())
	return cmd
}

func orgCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := wire.OrganizationService().CreateOrganization(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("failed to create organization: %w", err)
			}
			fmt.Printf("Created organization %s (%s)\n", org.ID, org.Name)
			return nil
		},
	}
}

func orgListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			orgs, err := wire.OrganizationService().ListOrganizations(NewContext())
			if err != nil {
				return fmt.Errorf("failed to list organizations: %w", err)
			}

			if len(orgs) == 0 {
				fmt.Println("No organizations found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCREATED")
			fmt.Fprintln(w, "--\t----\t-------")
			for _, org := range orgs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", org.ID, org.Name, org.CreatedAt)
			}
			w.Flush()
			return nil
		},
	}
}

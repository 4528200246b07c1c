package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"toolshed/internal/models"
	"toolshed/internal/repository"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RequestsCmd returns the requests command
func RequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Inspect tool requests",
	}
	cmd.AddCommand(requestsListCmd())
	return cmd
}

func requestsListCmd() *cobra.Command {
	var (
		userID uint
		status string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tool requests with their user, tool and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *models.RequestStatusID
			if status != "" {
				s, err := models.ParseRequestStatus(status)
				if err != nil {
					return err
				}
				filter = &s
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			repo := repository.NewToolRequestRepository(db)
			var requests []models.ToolRequest
			if userID != 0 {
				requests, err = repo.ListByUser(cmd.Context(), userID)
			} else {
				requests, err = repo.List(cmd.Context())
			}
			if err != nil {
				return err
			}

			if filter != nil {
				kept := requests[:0]
				for _, r := range requests {
					if r.StatusID == *filter {
						kept = append(kept, r)
					}
				}
				requests = kept
			}

			return printRequests(cmd.OutOrStdout(), requests)
		},
	}

	cmd.Flags().UintVarP(&userID, "user", "u", 0, "Only show requests of this user id")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Only show requests in this status (name or id)")

	return cmd
}

func printRequests(out io.Writer, requests []models.ToolRequest) error {
	if len(requests) == 0 {
		_, err := fmt.Fprintln(out, "No tool requests.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	// STATUS stays last: color escapes would otherwise widen its cell.
	fmt.Fprintln(w, "ID\tCODE\tTOOL\tUSER\tCREATED\tSTATUS")
	for _, r := range requests {
		tool, user := "-", "-"
		if r.Tool != nil {
			tool = r.Tool.Name
		}
		if r.User != nil {
			user = r.User.Username
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Code, tool, user, r.CreatedAt.Format("2006-01-02 15:04"),
			statusColor(r.StatusID).Sprint(r.StatusID.Label()))
	}
	return w.Flush()
}

func statusColor(s models.RequestStatusID) *color.Color {
	switch s {
	case models.StatusPending:
		return color.New(color.FgYellow)
	case models.StatusApproved:
		return color.New(color.FgBlue)
	case models.StatusRejected:
		return color.New(color.FgRed)
	case models.StatusDelivered:
		return color.New(color.FgGreen)
	default:
		return color.New(color.Reset)
	}
}

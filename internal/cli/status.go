package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"printfarm-backend/internal/db"
	"printfarm-backend/internal/model"
	"printfarm-backend/internal/store"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the order queue and printer fleet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			gormDB, err := db.Open(&cfg.Database)
			if err != nil {
				return err
			}
			st := store.NewGormStore(gormDB)

			counts, err := orderCounts(st)
			if err != nil {
				return err
			}
			printers, err := st.ListPrinters(cmd.Context())
			if err != nil {
				return err
			}
			return renderStatus(cmd.OutOrStdout(), counts, printers, time.Now().UTC())
		},
	}
	addConfigFlag(cmd, &configPath)
	return cmd
}

func orderCounts(st store.Store) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		N      int64
	}
	if err := st.DB().Model(&model.Order{}).Select("status, count(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}

func renderStatus(w io.Writer, counts map[model.OrderStatus]int64, printers []model.Printer, now time.Time) error {
	fmt.Fprintln(w, "Orders")
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	if len(statuses) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, s := range statuses {
		fmt.Fprintf(w, "  %-10s %d\n", s, counts[model.OrderStatus(s)])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Printers")
	if len(printers) == 0 {
		fmt.Fprintln(w, "  (none)")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tNAME\tSTATUS\tORDER\tLAST SEEN")
	for _, p := range printers {
		order := "-"
		if p.CurrentOrderID != nil {
			order = fmt.Sprintf("#%d", *p.CurrentOrderID)
		}
		seen := "never"
		if p.LastHeartbeatAt != nil {
			seen = now.Sub(*p.LastHeartbeatAt).Truncate(time.Second).String() + " ago"
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, colorStatus(p.Status), order, seen)
	}
	return tw.Flush()
}

func colorStatus(s model.PrinterStatus) string {
	switch s {
	case model.PrinterIdle:
		return color.New(color.FgGreen).Sprint(s)
	case model.PrinterPrinting:
		return color.New(color.FgBlue).Sprint(s)
	case model.PrinterOffline:
		return color.New(color.FgRed).Sprint(s)
	default:
		return color.New(color.FgYellow).Sprint(s)
	}
}

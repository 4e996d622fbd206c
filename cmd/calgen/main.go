// Command calgen prints Yphilios dates, month grids and event listings.
//
// Usage:
//
//	calgen date 1622 7 10
//	calgen index 604000
//	calgen month 1622 6
//	calgen year 1622
//	calgen events 1622 --catalog catalog.yaml
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
	"github.com/zapponejosh/yphilios-calendar/internal/events"
)

var catalogPath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "calgen",
		Short:         "Yphilios calendar generator",
		Long:          "Print Yphilios dates, month grids and the events marked on them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML event catalog (default: built-in)")

	root.AddCommand(dateCmd(), indexCmd(), monthCmd(), yearCmd(), eventsCmd())
	return root
}

func dateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "date YEAR MONTH DAY",
		Short: "Describe a date; out-of-range parts are normalised",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := ints(args, true)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			d := calendar.DateFromParts(n[0], n[1], n[2])
			return printDay(cmd.OutOrStdout(), d, catalog)
		},
	}
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index DAY_INDEX",
		Short: "Describe the date with the given day index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := ints(args, false)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			return printDay(cmd.OutOrStdout(), calendar.DateFromIndex(n[0]), catalog)
		},
	}
}

func monthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month YEAR MONTH",
		Short: "Print a month grid; marked days carry a *",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := ints(args, true)
			if err != nil {
				return err
			}
			if n[1] < 1 || n[1] > calendar.MonthsPerYear {
				return fmt.Errorf("month must be between 1 and %d", calendar.MonthsPerYear)
			}
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			marked, err := catalog.MarkedDates(n[0])
			if err != nil {
				return err
			}
			printMonth(cmd.OutOrStdout(), calendar.Default(), n[0], n[1], marked)
			return nil
		},
	}
}

func yearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "year YEAR",
		Short: "Print all twelve month grids of a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := ints(args, true)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			marked, err := catalog.MarkedDates(n[0])
			if err != nil {
				return err
			}
			printYear(cmd.OutOrStdout(), calendar.Default(), n[0], marked)
			return nil
		},
	}
}

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events YEAR",
		Short: "List every event marked in a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := ints(args, true)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			marked, err := catalog.MarkedDates(n[0])
			if err != nil {
				return err
			}
			printEvents(cmd.OutOrStdout(), marked)
			return nil
		},
	}
}

func loadCatalog() (*events.Catalog, error) {
	if catalogPath == "" {
		return events.DefaultCatalog(nil)
	}
	f, err := events.LoadFile(catalogPath)
	if err != nil {
		return nil, err
	}
	return events.BuildCatalog(f, nil)
}

// ints parses the numeric arguments. When yearFirst is set the first one
// is a year and must satisfy calendar.YearInDomain; the rest must satisfy
// calendar.OffsetInDomain.
func ints(args []string, yearFirst bool) ([]int, error) {
	n := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", a)
		}
		if i == 0 && yearFirst {
			if !calendar.YearInDomain(v) {
				return nil, fmt.Errorf("year %d out of range, must be within ±%d", v, int64(calendar.MaxYear))
			}
		} else if !calendar.OffsetInDomain(v) {
			return nil, fmt.Errorf("%d out of range, must be within ±%d", v, int64(calendar.MaxDayOffset))
		}
		n[i] = int(v)
	}
	return n, nil
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"delivery-route-service/internal/config"
	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/ingest"
	"delivery-route-service/internal/ports"
	"delivery-route-service/internal/services"
	"delivery-route-service/internal/store"
)

// main is the application composition root: it wires the CSV ingest
// adapter and the simulation core together and hands the result to an
// interactive status console, the way the teacher's cmd/server/main.go
// wires adapters behind ports before starting its HTTP server
// (_examples/erenceh-delivery-route-api/cmd/server/main.go).
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var repo ports.ParcelRepository = ingest.CSVParcelRepository{Path: cfg.PackagesCSV, BaseDate: cfg.BaseDate}
	parcels, err := repo.ListParcels()
	if err != nil {
		log.Fatal(err)
	}

	parcelStore := store.New(len(parcels))
	for _, p := range parcels {
		parcelStore.Insert(p.ID, p)
	}

	distanceTable, err := ingest.LoadDistanceTable(cfg.AddressesCSV, cfg.DistancesCSV)
	if err != nil {
		log.Fatal(err)
	}

	sim := services.NewSimulator(cfg, parcelStore, distanceTable)

	eventLog, err := sim.Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	totalMileage := 0.0
	for _, truck := range sim.Trucks {
		totalMileage += truck.Mileage
	}

	fmt.Printf("\nTotal mileage: %.2f\n", totalMileage)
	if totalMileage <= cfg.MileageBudget {
		fmt.Println("Total mileage is within the limit.")
	} else {
		fmt.Println("Total mileage exceeds the limit!")
	}

	if err := runConsole(os.Stdin, os.Stdout, parcelStore, cfg, totalMileage, eventLog); err != nil {
		log.Fatal(err)
	}
}

// runConsole implements the interactive status menu: five options (all
// parcels as of a time, one parcel as of a time, total mileage, the event
// log, exit), h:mm AM/PM time parsing, and a return to the menu on bad
// input rather than exiting. There is no by-address query.
func runConsole(in *os.File, out *os.File, parcels *store.ParcelStore, cfg config.Config, totalMileage float64, eventLog domain.EventLog) error {
	reader := bufio.NewReader(in)

	for {
		fmt.Fprintln(out, "\nWGUPS Package Delivery System")
		fmt.Fprintln(out, "1. View status of all packages at a given time")
		fmt.Fprintln(out, "2. View status of a single package at a given time")
		fmt.Fprintln(out, "3. View total mileage")
		fmt.Fprintln(out, "4. View the full event log")
		fmt.Fprintln(out, "5. Exit")
		fmt.Fprint(out, "Please select an option: ")

		choice, err := readLine(reader)
		if err != nil {
			return fmt.Errorf("run console: %w", err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			asOf, ok := promptTime(reader, out, cfg.BaseDate)
			if !ok {
				continue
			}
			printAllStatuses(out, parcels, asOf, cfg)
		case "2":
			fmt.Fprint(out, "Enter the package ID: ")
			id, err := readLine(reader)
			if err != nil {
				return fmt.Errorf("run console: %w", err)
			}
			id = strings.TrimSpace(id)

			asOf, ok := promptTime(reader, out, cfg.BaseDate)
			if !ok {
				continue
			}
			printSingleStatus(out, parcels, id, asOf, cfg)
		case "3":
			fmt.Fprintf(out, "Total mileage: %.2f\n", totalMileage)
		case "4":
			printEventLog(out, eventLog)
		case "5":
			return nil
		default:
			fmt.Fprintln(out, "Invalid option. Please try again.")
		}
	}
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

// promptTime reads a time and reports ok=false (already having printed a
// message) if it fails to parse, so the caller returns to the main menu
// instead of propagating the error.
func promptTime(reader *bufio.Reader, out *os.File, baseDate time.Time) (time.Time, bool) {
	fmt.Fprint(out, "Enter the time (h:mm AM/PM): ")
	raw, err := readLine(reader)
	if err != nil {
		fmt.Fprintln(out, "Could not read input, returning to menu.")
		return time.Time{}, false
	}

	t, err := time.Parse("3:04 PM", strings.TrimSpace(raw))
	if err != nil {
		fmt.Fprintf(out, "Could not parse %q as a time (expected h:mm AM/PM).\n", strings.TrimSpace(raw))
		return time.Time{}, false
	}

	return time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
}

func printAllStatuses(out *os.File, parcels *store.ParcelStore, asOf time.Time, cfg config.Config) {
	all := parcels.All()
	sort.Slice(all, func(i, j int) bool {
		ni, erri := strconv.Atoi(all[i].ID)
		nj, errj := strconv.Atoi(all[j].ID)
		if erri == nil && errj == nil {
			return ni < nj
		}
		return all[i].ID < all[j].ID
	})

	for _, p := range all {
		printStatusLine(out, services.StatusQuery(p, asOf, cfg))
	}
}

func printSingleStatus(out *os.File, parcels *store.ParcelStore, id string, asOf time.Time, cfg config.Config) {
	p := parcels.Lookup(id)
	if p == nil {
		fmt.Fprintln(out, "Package not found.")
		return
	}
	printStatusLine(out, services.StatusQuery(p, asOf, cfg))
}

func printStatusLine(out *os.File, view services.ParcelView) {
	switch view.Status {
	case domain.Delivered:
		fmt.Fprintf(out, "Package %s: Delivered at %s\n", view.ID, view.DeliveryTime.Format("3:04 PM"))
	case domain.EnRoute:
		fmt.Fprintf(out, "Package %s: En Route (Truck %d)\n", view.ID, view.TruckID)
	default:
		fmt.Fprintf(out, "Package %s: At Hub\n", view.ID)
	}
}

func printEventLog(out *os.File, eventLog domain.EventLog) {
	for _, e := range eventLog.Sorted() {
		fmt.Fprintln(out, e.String())
	}
}

package commands

import (
	"cursedcompass-backend/internal/history"
	"cursedcompass-backend/internal/scrapers/ipms"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

func inventoryText(room ipms.Room) string {
	if room.InventoryCount == nil {
		return "?"
	}
	return strconv.Itoa(*room.InventoryCount)
}

func renderRooms(out io.Writer, title string, rooms []ipms.Room) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Id", "Name", "Price", "Available", "Inventory"})

	for _, room := range rooms {
		t.AppendRow(table.Row{
			room.Id,
			room.Name,
			strconv.FormatFloat(room.Price, 'f', 2, 64),
			room.Available,
			inventoryText(room),
		})
	}
	if len(rooms) == 0 {
		t.AppendRow(table.Row{"-", "no rooms", "", "", ""})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderHistory(out io.Writer, records []history.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Id", "Hotel", "Dates", "Guests", "Success", "Found", "Kept", "Scraped At"})

	for _, record := range records {
		success := "yes"
		if !record.Success {
			success = "no: " + record.Error
		}
		t.AppendRow(table.Row{
			record.Id,
			record.HotelId,
			record.CheckIn + " -> " + record.CheckOut,
			record.Guests,
			success,
			record.TotalRoomsFound,
			record.RoomsAfterFiltering,
			record.ScrapedAt.Format("2006-01-02 15:04:05"),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

// markers are words whose frequency hints at whether a saved response
// is a room listing at all.
var markers = []string{"room", "price", "available", "inventory"}

type markerReport struct {
	HasResgrid bool
	Counts     map[string]int
}

func scanMarkers(body string) markerReport {
	lower := strings.ToLower(body)
	report := markerReport{
		HasResgrid: strings.Contains(body, "resgrid"),
		Counts:     make(map[string]int, len(markers)),
	}
	for _, marker := range markers {
		report.Counts[marker] = strings.Count(lower, marker)
	}
	return report
}

func renderMarkers(out io.Writer, report markerReport) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Markers")
	t.AppendHeader(table.Row{"Marker", "Value"})
	t.AppendRow(table.Row{"resgrid", report.HasResgrid})
	for _, marker := range markers {
		t.AppendRow(table.Row{marker, report.Counts[marker]})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

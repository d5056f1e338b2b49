package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"campusnav/models"
)

var (
	app            *tview.Application
	pages          *tview.Pages
	searchInput    *tview.InputField
	placesList     *tview.List
	directionsView *tview.TextView
	statusLine     *tview.TextView
	flex           *tview.Flex
	helpView       *tview.TextView
	mascotGlyphs   = map[bool]string{true: "(o_o)♪", false: "(o_o) "}
	helpText       = `
[yellow]Enter[white]: search places
[yellow]F1[white]: toggle set-start mode
[yellow]F2[white]: toggle set-destination mode
[yellow]F3[white]: driving/walking
[yellow]F4[white]: clear route
[yellow]F5[white]: toggle voice
[yellow]F12[white]: this help

Selecting a place acts as a map click.
Press Enter to go back
`
)

// tuiSurface renders mascot class toggles as status glyphs.
type tuiSurface struct{}

func (tuiSurface) ToggleClass(class string, on bool) {
	if class != "speaking" {
		return
	}
	app.QueueUpdateDraw(func() {
		updateStatusLine(on)
	})
}

func (tuiSurface) PlayReaction(name string) {
	// short reactions collapse to a redraw in the terminal
	app.QueueUpdateDraw(func() {})
}

// tuiStatus is the coordinator's loading indicator + placeholder.
type tuiStatus struct{}

func (tuiStatus) ShowRouteLoading(on bool) {
	app.QueueUpdateDraw(func() {
		if on {
			directionsView.SetText("[::i]Calculating route...[-:-:-]")
		}
	})
}

func (tuiStatus) ShowRoutePlaceholder(msg string) {
	app.QueueUpdateDraw(func() {
		directionsView.SetText(msg)
	})
}

var speakingNow bool

func updateStatusLine(speaking bool) {
	speakingNow = speaking
	voiceState := "off"
	if narrator.Enabled() {
		voiceState = "on"
	}
	statusLine.SetText(fmt.Sprintf("%s  mode: %s | selecting: %s | voice: %s | F12 help",
		mascotGlyphs[speakingNow], coord.TransportMode(), selLabel(coord.SelectionMode()), voiceState))
}

func selLabel(m models.SelectionMode) string {
	switch m {
	case models.SelectionStart:
		return "start"
	case models.SelectionEnd:
		return "destination"
	default:
		return "-"
	}
}

func renderDirections(steps []models.DirectionStep, summary *models.RouteSummary) {
	app.QueueUpdateDraw(func() {
		if steps == nil {
			directionsView.SetText("No route. Pick start and destination.")
			return
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "[yellow]%s, about %s[white]\n\n",
			capFirst(string(summary.Mode)), summary.EstimatedTime().Round(time.Second))
		for i, st := range steps {
			fmt.Fprintf(&sb, "%2d. %s\n", i+1, st.Text)
		}
		directionsView.SetText(sb.String())
	})
}

func capFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func runSearch(query string) {
	results, err := store.SearchPlaces(query, 10)
	if err != nil {
		logger.Error("place search failed", "error", err)
		return
	}
	placesList.Clear()
	for _, pl := range results {
		pl := pl
		placesList.AddItem(pl.Name, pl.Category, 0, func() {
			go coord.HandleMapClick(pl.Coordinate())
		})
	}
	if len(results) > 0 {
		app.SetFocus(placesList)
	}
}

func initTUI() {
	theme := tview.Theme{
		PrimitiveBackgroundColor:    tcell.ColorDefault,
		ContrastBackgroundColor:     tcell.ColorGray,
		MoreContrastBackgroundColor: tcell.ColorNavy,
		BorderColor:                 tcell.ColorGray,
		TitleColor:                  tcell.ColorGreen,
		GraphicsColor:               tcell.ColorBlue,
		PrimaryTextColor:            tcell.ColorDefault,
		SecondaryTextColor:          tcell.ColorYellow,
	}
	tview.Styles = theme
	app = tview.NewApplication()
	pages = tview.NewPages()
	searchInput = tview.NewInputField().
		SetPlaceholder("Search campus places...")
	searchInput.SetBorder(true).SetTitle("search")
	searchInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			runSearch(searchInput.GetText())
		}
	})
	placesList = tview.NewList().ShowSecondaryText(true)
	placesList.SetBorder(true).SetTitle("places")
	directionsView = tview.NewTextView().
		SetDynamicColors(true).
		SetChangedFunc(func() {
			app.Draw()
		})
	directionsView.SetBorder(true).SetTitle("directions")
	directionsView.SetText("No route. Pick start and destination.")
	statusLine = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	helpView = tview.NewTextView().SetDynamicColors(true).SetText(helpText)
	helpView.SetBorder(true).SetTitle("help")
	helpView.SetDoneFunc(func(key tcell.Key) {
		pages.RemovePage("help")
	})
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(searchInput, 3, 0, true).
		AddItem(placesList, 0, 1, false)
	flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewFlex().
			AddItem(left, 0, 1, true).
			AddItem(directionsView, 0, 2, false), 0, 1, true).
		AddItem(statusLine, 1, 0, false)
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// any gesture may unblock a not-allowed speech device
		narrator.Nudge()
		switch event.Key() {
		case tcell.KeyF1:
			go coord.SetPointSelectionMode(models.SelectionStart, false)
			return nil
		case tcell.KeyF2:
			go coord.SetPointSelectionMode(models.SelectionEnd, false)
			return nil
		case tcell.KeyF3:
			next := models.ModeWalking
			if coord.TransportMode() == models.ModeWalking {
				next = models.ModeDriving
			}
			coord.SetTransportMode(next)
			updateStatusLine(speakingNow)
			return nil
		case tcell.KeyF4:
			go coord.Clear()
			return nil
		case tcell.KeyF5:
			narrator.Toggle()
			updateStatusLine(speakingNow)
			return nil
		case tcell.KeyF12:
			pages.AddPage("help", helpView, true, true)
			return nil
		}
		return event
	})
	updateStatusLine(false)
}

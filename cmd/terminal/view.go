package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"deriv_terminal/internal/book"
	"deriv_terminal/internal/instrument"
	"deriv_terminal/internal/interval"
	"deriv_terminal/internal/models"
	"deriv_terminal/internal/session"
)

const (
	refreshEvery    = 200 * time.Millisecond
	depthBarColumns = 12
	chartBars       = 16
)

// view is a thin consumer of the session state: it only reads snapshots and
// calls the public operations, all market logic stays in the session.
type view struct {
	sess *session.Session
	app  *tview.Application

	header    *tview.TextView
	chart     *tview.TextView
	ladder    *tview.Table
	positions *tview.Table
	footer    *tview.TextView
}

func runView(sess *session.Session) error {
	v := &view{
		sess:      sess,
		app:       tview.NewApplication(),
		header:    tview.NewTextView().SetDynamicColors(true),
		chart:     tview.NewTextView(),
		ladder:    tview.NewTable(),
		positions: tview.NewTable(),
		footer:    tview.NewTextView().SetDynamicColors(true),
	}
	v.chart.SetBorder(true).SetTitle(" Candles ")
	v.ladder.SetBorder(true).SetTitle(" Order Book ")
	v.positions.SetBorder(true).SetTitle(" Positions ")
	v.footer.SetText("[yellow]1-9[-] interval  [yellow]tab[-] instrument  [yellow]b/s[-] buy/sell  [yellow]h[-] more history  [yellow]q[-] quit")

	grid := tview.NewGrid().
		SetRows(3, 0, 10, 1).
		SetColumns(0, 44).
		AddItem(v.header, 0, 0, 1, 2, 0, 0, false).
		AddItem(v.chart, 1, 0, 1, 1, 0, 0, false).
		AddItem(v.ladder, 1, 1, 1, 1, 0, 0, false).
		AddItem(v.positions, 2, 0, 1, 2, 0, 0, false).
		AddItem(v.footer, 3, 0, 1, 2, 0, 0, false)

	v.app.SetInputCapture(v.onKey)

	go func() {
		ticker := time.NewTicker(refreshEvery)
		defer ticker.Stop()
		for range ticker.C {
			st := v.sess.Snapshot()
			v.app.QueueUpdateDraw(func() { v.render(st) })
		}
	}()

	return v.app.SetRoot(grid, true).Run()
}

func (v *view) onKey(ev *tcell.EventKey) *tcell.EventKey {
	st := v.sess.Snapshot()
	switch ev.Key() {
	case tcell.KeyTAB:
		if next := nextInstrument(st); next != "" {
			v.sess.Reset(st.Interval, next)
		}
		return nil
	case tcell.KeyRune:
		switch r := ev.Rune(); {
		case r == 'q':
			v.app.Stop()
			return nil
		case r >= '1' && r <= '9':
			ivs := interval.All()
			v.sess.Reset(ivs[int(r-'1')], st.Instrument)
			return nil
		case r == 'h':
			v.sess.RequestMoreHistory()
			return nil
		case r == 'b' || r == 's':
			if st.Ticker == nil {
				return nil
			}
			side := models.SideBuy
			if r == 's' {
				side = models.SideSell
			}
			// Simulated market order: one contract at the last price.
			_ = v.sess.AddPosition(side, st.Ticker.Last, "1")
			return nil
		}
	}
	return ev
}

func (v *view) render(st session.State) {
	v.renderHeader(st)
	v.renderChart(st)
	v.renderLadder(st)
	v.renderPositions(st)
}

func (v *view) renderHeader(st session.State) {
	last, change := "-", "-"
	if st.Ticker != nil {
		last = st.Ticker.Last
		change = st.Ticker.Change
	}
	v.header.SetText(fmt.Sprintf(
		" [::b]%s[-:-:-]  %s   last %s  chg %s\n mark %s  index %s  funding/1h %s  countdown %s  [gray]stream %s[-]",
		st.Instrument, st.Interval, last, change,
		st.Mark, st.Index, st.Funding, fundingCountdown(time.Now()), st.Connection))
}

func (v *view) renderChart(st session.State) {
	var b strings.Builder
	fmt.Fprintf(&b, "%d bars loaded", len(st.Candles))
	if st.Exhausted {
		b.WriteString(" (full history)")
	}
	b.WriteString("\n\n")

	bars := st.Candles
	if st.LastBar != nil && (len(bars) == 0 || bars[len(bars)-1].Time < st.LastBar.Time) {
		bars = append(bars, *st.LastBar)
	}
	if len(bars) > chartBars {
		bars = bars[len(bars)-chartBars:]
	}
	for _, bar := range bars {
		fmt.Fprintf(&b, "%s  O %-10.1f H %-10.1f L %-10.1f C %-10.1f\n",
			time.Unix(bar.Time, 0).UTC().Format("01-02 15:04"),
			bar.Open, bar.High, bar.Low, bar.Close)
	}
	v.chart.SetText(b.String())
}

func (v *view) renderLadder(st session.State) {
	v.ladder.Clear()
	base := instrument.Base(st.Instrument)
	setCells(v.ladder, 0, tview.Styles.SecondaryTextColor,
		"Price", "Size("+base+")", "Sum("+base+")", "")
	if st.Book == nil {
		return
	}
	row := 1
	for _, lvl := range st.Book.Asks {
		setCells(v.ladder, row, tcell.ColorRed,
			lvl.Price, lvl.Quantity, lvl.Sum, depthBar(lvl, st.Book.MaxAsk))
		row++
	}
	if st.Ticker != nil {
		setCells(v.ladder, row, tview.Styles.PrimaryTextColor, st.Ticker.Last, "", "", "")
		row++
	}
	for _, lvl := range st.Book.Bids {
		setCells(v.ladder, row, tcell.ColorGreen,
			lvl.Price, lvl.Quantity, lvl.Sum, depthBar(lvl, st.Book.MaxBid))
		row++
	}
}

func (v *view) renderPositions(st session.State) {
	v.positions.Clear()
	setCells(v.positions, 0, tview.Styles.SecondaryTextColor,
		"Market", "Side", "Position Size", "Avg open price", "Value(USD)")
	for i, sum := range st.Summaries {
		color := tcell.ColorGreen
		side := "Long"
		if sum.Side == models.SideSell {
			color = tcell.ColorRed
			side = "Short"
		}
		size := fmt.Sprintf("%g", sum.TotalSize)
		price := fmt.Sprintf("%.4f", sum.AvgPrice)
		setCells(v.positions, i+1, color,
			sum.Instrument, side, size, price, models.OrderValue(price, size))
	}
}

func setCells(t *tview.Table, row int, color tcell.Color, cells ...string) {
	for col, text := range cells {
		t.SetCell(row, col, tview.NewTableCell(text).SetTextColor(color))
	}
}

// depthBar renders a level's share of the side maximum as a fixed-width bar.
func depthBar(lvl book.Level, sideMax float64) string {
	n := int(book.DepthRatio(lvl.Quantity, sideMax) * depthBarColumns)
	return strings.Repeat("█", n)
}

// nextInstrument cycles through the perpetual catalog.
func nextInstrument(st session.State) string {
	if len(st.Instruments) == 0 {
		return ""
	}
	for i, t := range st.Instruments {
		if t.Instrument == st.Instrument {
			return st.Instruments[(i+1)%len(st.Instruments)].Instrument
		}
	}
	return st.Instruments[0].Instrument
}

// fundingCountdown is the time left to the top of the UTC hour, when the
// next funding rate applies.
func fundingCountdown(now time.Time) string {
	now = now.UTC()
	left := 3600 - now.Minute()*60 - now.Second()
	return fmt.Sprintf("00:%02d:%02d", left/60, left%60)
}

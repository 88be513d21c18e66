package main

import (
	"fmt"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/soundforge/masterchain"
)

const (
	colDef    = termbox.ColorDefault
	colWhite  = termbox.ColorWhite
	colRed    = termbox.ColorRed
	colGreen  = termbox.ColorGreen
	colYellow = termbox.ColorYellow
	colBlue   = termbox.ColorBlue
	colCyan   = termbox.ColorCyan
)

// tuiParam binds one editable row of the TUI to a (Target, Field) pair on
// the chain's parameter plane, a local display mirror (the chain itself
// holds no getters, only setters reached through the queue, per §5's
// "controller never reads processor state directly" design), and a step
// size for arrow-key adjustment.
type tuiParam struct {
	label  string
	target mastering.ParamTarget
	field  mastering.ParamField
	value  float64
	step   float64
}

// TUIState tracks the full chain's editable parameters in a flat list:
// selectedParam indexes into a list spanning EQ, compressor and limiter
// fields rather than one processor's knobs.
type TUIState struct {
	selectedParam int
	chain         *mastering.Chain
	params        []tuiParam
	exit          bool
}

func newTUIState(chain *mastering.Chain) *TUIState {
	return &TUIState{
		chain: chain,
		params: []tuiParam{
			{label: "EQ Bass Gain (dB)", target: mastering.TargetEQ, field: mastering.FieldBassGain, value: 0, step: 0.5},
			{label: "EQ Treble Gain (dB)", target: mastering.TargetEQ, field: mastering.FieldTrebleGain, value: 0, step: 0.5},
			{label: "Comp Threshold (dB)", target: mastering.TargetCompressor, field: mastering.FieldThreshold, value: -20, step: 0.5},
			{label: "Comp Ratio (1:x)", target: mastering.TargetCompressor, field: mastering.FieldRatio, value: 4, step: 0.5},
			{label: "Comp Attack (ms)", target: mastering.TargetCompressor, field: mastering.FieldAttack, value: 10, step: 1},
			{label: "Comp Release (ms)", target: mastering.TargetCompressor, field: mastering.FieldRelease, value: 100, step: 10},
			{label: "Comp Makeup (dB)", target: mastering.TargetCompressor, field: mastering.FieldMakeupGain, value: 0, step: 0.5},
			{label: "Limiter Ceiling (dB)", target: mastering.TargetLimiter, field: mastering.FieldCeiling, value: -0.3, step: 0.1},
			{label: "Limiter Release (ms)", target: mastering.TargetLimiter, field: mastering.FieldRelease, value: 50, step: 5},
		},
	}
}

// runTUI drives the live meter display until the user quits: a background
// goroutine feeds termbox events into a channel, and a ticker forces a
// periodic redraw so meters keep animating between keypresses.
func runTUI(chain *mastering.Chain) {
	if err := termbox.Init(); err != nil {
		fmt.Printf("Failed to initialize TUI: %v\n", err) //nolint:forbidigo // TUI initialization error requires direct output
		return
	}
	defer termbox.Close()

	termbox.SetInputMode(termbox.InputEsc)

	state := newTUIState(chain)

	eventQueue := make(chan termbox.Event)
	go func() {
		for {
			eventQueue <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	draw(state)

	for !state.exit {
		select {
		case ev := <-eventQueue:
			switch ev.Type {
			case termbox.EventKey:
				handleKey(ev, state)
			case termbox.EventResize:
				draw(state)
			}
		case <-ticker.C:
			draw(state)
		}
	}
}

func handleKey(ev termbox.Event, s *TUIState) {
	if ev.Key == termbox.KeyEsc || ev.Ch == 'q' {
		s.exit = true
		return
	}

	switch ev.Key {
	case termbox.KeyArrowUp:
		s.selectedParam--
		if s.selectedParam < 0 {
			s.selectedParam = len(s.params) - 1
		}
	case termbox.KeyArrowDown:
		s.selectedParam++
		if s.selectedParam >= len(s.params) {
			s.selectedParam = 0
		}
	case termbox.KeyArrowRight:
		adjustSelected(s, 1)
	case termbox.KeyArrowLeft:
		adjustSelected(s, -1)
	}
}

func adjustSelected(s *TUIState, direction float64) {
	p := &s.params[s.selectedParam]
	p.value += direction * p.step
	s.chain.Params().Submit(mastering.ParamUpdate{Target: p.target, Field: p.field, Value: p.value})
}

func draw(state *TUIState) {
	_ = termbox.Clear(colDef, colDef)

	printTB(0, 0, colCyan, colDef, "masterchain mastering chain - Interactive Mode")
	printTB(0, 1, colWhite, colDef,
		fmt.Sprintf("Sample Rate: %d Hz | Block Size: %d", state.chain.SampleRate(), state.chain.BlockSize()))
	printTB(0, 2, colDef, colDef, "Use Arrows to navigate/adjust. 'q' or Esc to quit.")
	printTB(0, 3, colDef, colDef, "----------------------------------------------------")

	for i, p := range state.params {
		col := colWhite
		bgColor := colDef
		prefix := "  "

		if i == state.selectedParam {
			col = colDef
			bgColor = colWhite
			prefix = "> "
		}

		printTB(0, 5+i, col, bgColor, fmt.Sprintf("% -24s %6.1f", prefix+p.label, p.value))
	}

	meterY := 5 + len(state.params) + 2
	printTB(0, meterY, colYellow, colDef, "Meters:")

	row := meterY + 2
	for _, name := range []string{"input", "post-eq", "post-comp", "post-limiter", "output"} {
		tap := state.chain.Tap(name)
		if tap == nil {
			continue
		}
		frame := tap.Smoothed()

		drawMeter(row, name+" L", frame.PeakLeftDB, colGreen)
		drawMeter(row+1, name+" R", frame.PeakRightDB, colGreen)
		row += 2

		if frame.GainReductionDB > 0 {
			drawMeter(row, name+" GR", frame.GainReductionDB, colRed)
			row++
		}
	}
	_ = colBlue // reserved for output-stage highlighting, unused while output shares the level-meter palette

	termbox.Flush()
}

// drawMeter renders a horizontal bar for a dB reading. Gain-reduction rows
// (color == colRed) use a 0..24 dB span; level rows use -96..+6 dBFS.
func drawMeter(yPos int, label string, db float64, color termbox.Attribute) {
	const (
		barWidth = 60
		xPos     = 2
	)

	var filled int
	if color == colRed {
		ratio := db / 24.0
		if ratio > 1 {
			ratio = 1
		}
		if ratio < 0 {
			ratio = 0
		}
		filled = int(ratio * float64(barWidth))
	} else {
		minDB, maxDB := -96.0, 6.0
		if db < minDB {
			db = minDB
		}
		if db > maxDB {
			db = maxDB
		}
		ratio := (db - minDB) / (maxDB - minDB)
		filled = int(ratio * float64(barWidth))
	}

	printTB(xPos, yPos, colDef, colDef, fmt.Sprintf("%-14s [%-6.1f dB] ", label, db))

	startX := xPos + 23
	for i := 0; i < barWidth; i++ {
		var barChar rune
		if i < filled {
			barChar = '█'
		} else {
			barChar = '░'
		}
		termbox.SetCell(startX+i, yPos, barChar, color, colDef)
	}
}

func printTB(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x++
	}
}

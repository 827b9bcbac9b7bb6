// Command ringview animates one particle pool in the terminal, one cell per
// ring slot, coloured by the arc the slot belongs to.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gekko3d/sparks/pool"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	frameInterval = 50 * time.Millisecond
	burstSize     = 25
)

var arcStyles = map[pool.Arc]tcell.Style{
	pool.ArcFree:    tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray),
	pool.ArcNew:     tcell.StyleDefault.Foreground(tcell.ColorYellow),
	pool.ArcActive:  tcell.StyleDefault.Foreground(tcell.ColorGreen),
	pool.ArcRetired: tcell.StyleDefault.Foreground(tcell.ColorRed),
}

type viewer struct {
	screen tcell.Screen
	pool   *pool.Pool

	rate      float32
	spawnAcc  float32
	autoFlush bool
	paused    bool
	lastErr   error
}

func (v *viewer) step(dt float32) {
	if v.paused {
		return
	}
	v.spawnAcc += v.rate * dt
	for ; v.spawnAcc >= 1; v.spawnAcc-- {
		v.pool.AddParticle(mgl32.Vec3{}, mgl32.Vec3{})
	}
	if err := v.pool.Update(dt); err != nil {
		v.lastErr = err
		return
	}
	if v.autoFlush {
		v.pool.Flush(nil)
	}
}

func (v *viewer) draw() {
	v.screen.Clear()
	width, height := v.screen.Size()
	if width <= 0 {
		return
	}

	c := v.pool.Counts()
	cur := v.pool.Cursors()
	status := fmt.Sprintf("frame %d  t=%.2fs  active %d  new %d  free %d  retired %d  dropped %d  rate %.0f/s  flush:%s",
		v.pool.Frame(), v.pool.SimulationTime(), c.Active, c.New, c.Free, c.Retired, v.pool.Dropped(), v.rate, onOff(v.autoFlush))
	v.text(0, 0, status, tcell.StyleDefault.Bold(true))
	v.text(0, 1, fmt.Sprintf("retired@%d active@%d new@%d free@%d", cur.RetiredStart, cur.ActiveStart, cur.NewStart, cur.FreeStart), tcell.StyleDefault)

	for i := 0; i < v.pool.Capacity(); i++ {
		x, y := i%width, 3+i/width
		if y >= height-1 {
			break
		}
		v.screen.SetContent(x, y, '█', nil, arcStyles[v.pool.ArcOf(i)])
	}

	help := "space burst  f auto-flush  n flush  +/- rate  p pause  q quit"
	if v.lastErr != nil {
		help = v.lastErr.Error()
	}
	v.text(0, height-1, help, tcell.StyleDefault.Foreground(tcell.ColorGray))
	v.screen.Show()
}

func (v *viewer) text(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}

// handleInput returns false when the viewer should quit.
func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			for i := 0; i < burstSize; i++ {
				v.pool.AddParticle(mgl32.Vec3{}, mgl32.Vec3{})
			}
		case 'f':
			v.autoFlush = !v.autoFlush
		case 'n':
			v.pool.Flush(nil)
		case 'p':
			v.paused = !v.paused
		case '+':
			v.rate += 10
		case '-':
			v.rate = max(0, v.rate-10)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- v.screen.PollEvent()
		}
	}()

	dt := float32(frameInterval.Seconds())
	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}
		case <-ticker.C:
			v.step(dt)
			v.draw()
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func main() {
	capacity := flag.Int("capacity", 400, "ring capacity")
	duration := flag.Float64("duration", 2, "particle lifetime in seconds")
	latency := flag.Int("latency", pool.DefaultRetirementLatencyFrames, "frames a retired slot waits before reuse")
	rate := flag.Float64("rate", 60, "particles per second")
	flag.Parse()

	settings := pool.DefaultSettings()
	settings.Capacity = *capacity
	settings.Duration = float32(*duration)
	settings.RetirementLatencyFrames = *latency

	p, err := pool.New(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create pool: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	v := &viewer{screen: screen, pool: p, rate: float32(*rate), autoFlush: true}
	v.run()
}

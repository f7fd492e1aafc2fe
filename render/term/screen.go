// Package term shows software-rendered frames in a terminal using half-block
// cells: each cell holds two vertically stacked pixels.
package term

import (
	"image"

	"github.com/gdamore/tcell/v2"
)

type EventKind int

const (
	EventMove EventKind = iota
	EventClick
	EventResize
	EventQuit
)

// Event is a terminal input event in pixel coordinates.
type Event struct {
	Kind          EventKind
	X, Y          float64
	Width, Height int
}

type Screen struct {
	screen  tcell.Screen
	events  chan tcell.Event
	quit    chan struct{}
	buttons tcell.ButtonMask
}

// Open initialises the controlling terminal.
func Open() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(s)
}

// NewWithScreen initialises s and starts polling its events.
func NewWithScreen(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.EnableMouse()
	s.HideCursor()
	s.Clear()

	scr := &Screen{
		screen: s,
		events: make(chan tcell.Event, 100),
		quit:   make(chan struct{}),
	}
	go scr.poll()
	return scr, nil
}

func (s *Screen) poll() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case s.events <- ev:
		case <-s.quit:
			return
		}
	}
}

// PixelSize is the drawable size: one pixel wide and two tall per cell.
func (s *Screen) PixelSize() (int, int) {
	w, h := s.screen.Size()
	return w, h * 2
}

// Events drains pending input without blocking.
func (s *Screen) Events() []Event {
	var out []Event
	for {
		select {
		case ev := <-s.events:
			if e, ok := s.translate(ev); ok {
				out = append(out, e)
			}
		default:
			return out
		}
	}
}

func (s *Screen) translate(ev tcell.Event) (Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
			return Event{Kind: EventQuit}, true
		}
	case *tcell.EventMouse:
		col, row := ev.Position()
		x, y := float64(col)+0.5, float64(row*2)+1
		buttons := ev.Buttons()
		pressed := buttons&tcell.Button1 != 0 && s.buttons&tcell.Button1 == 0
		s.buttons = buttons
		if pressed {
			return Event{Kind: EventClick, X: x, Y: y}, true
		}
		return Event{Kind: EventMove, X: x, Y: y}, true
	case *tcell.EventResize:
		s.screen.Sync()
		w, h := ev.Size()
		return Event{Kind: EventResize, Width: w, Height: h * 2}, true
	}
	return Event{}, false
}

// Draw shows img, which should be PixelSize. Pixels outside img are black.
func (s *Screen) Draw(img *image.RGBA) {
	w, h := s.screen.Size()
	bounds := img.Bounds()
	pixel := func(x, y int) tcell.Color {
		if !image.Pt(x, y).In(bounds) {
			return tcell.ColorBlack
		}
		c := img.RGBAAt(x, y)
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			style := tcell.StyleDefault.
				Foreground(pixel(col, row*2)).
				Background(pixel(col, row*2+1))
			s.screen.SetContent(col, row, '▀', nil, style)
		}
	}
	s.screen.Show()
}

func (s *Screen) Close() {
	close(s.quit)
	s.screen.Fini()
}

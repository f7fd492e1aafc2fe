package blacksky

// hostEvent is window or terminal input queued by a renderer host and
// applied on the loop thread.
type hostEvent struct {
	kind          hostEventKind
	x, y          float64
	width, height int
}

type hostEventKind int

const (
	hostMove hostEventKind = iota
	hostLeave
	hostClick
	hostResize
	hostQuit
)

// applyHostEvents feeds queued events into the frame's input and page.
func applyHostEvents(app *App, events []hostEvent, input *Input, page *Page) {
	for _, ev := range events {
		switch ev.kind {
		case hostMove:
			input.MovePointer(ev.x, ev.y)
		case hostLeave:
			input.LeaveWindow()
		case hostClick:
			input.MovePointer(ev.x, ev.y)
			input.Click(ev.x, ev.y)
		case hostResize:
			if ev.width > 0 && ev.height > 0 && (ev.width != page.Width || ev.height != page.Height) {
				page.Resize(ev.width, ev.height)
			}
		case hostQuit:
			app.RequestExit()
		}
	}
}

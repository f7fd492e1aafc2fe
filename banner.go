package blacksky

import (
	"io"

	"github.com/muesli/termenv"
)

const (
	bannerTitle   = " BLACK SKY "
	bannerTagline = " An Infinite Possibility that I Am "
)

// WriteBanner prints the two-line welcome banner. Colours degrade to plain
// text when w is not a colour terminal.
func WriteBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	title := out.String(bannerTitle).Foreground(out.Color("#00d4ff")).Bold()
	tagline := out.String(bannerTagline).Foreground(out.Color("#9d4edd"))
	io.WriteString(w, title.String()+"\n"+tagline.String()+"\n")
}

package vacuum

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
)

// Printer writes the step by step console trace of an agent run.
// A nil *Printer discards everything.
type Printer struct {
	w  io.Writer
	au aurora.Aurora
}

func NewPrinter(w io.Writer, colors bool) *Printer {
	return &Printer{
		w:  w,
		au: aurora.NewAurora(colors),
	}
}

func (p *Printer) printf(format string, args ...interface{}) {
	if p == nil || p.w == nil {
		return
	}
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) status(s Status) aurora.Value {
	if s == Dirty {
		return p.au.Red(s)
	}
	return p.au.Green(s)
}

func (p *Printer) Step(step int) {
	p.printf("\n--- Step %d ---\n", step)
}

func (p *Printer) Episode(episode int) {
	if p == nil {
		return
	}
	p.printf("\n=== Episode %d ===\n", episode)
}

func (p *Printer) Perception(r Room, s Status) {
	if p == nil {
		return
	}
	p.printf("[Perception] Agent is in %s, status: %s\n", r, p.status(s))
}

func (p *Printer) ModelUpdate(r Room, s Status, model map[Room]Status, order []Room) {
	if p == nil {
		return
	}
	p.printf("[Model Update] %s is now %s\n", r, p.status(s))
	p.printf("[Internal Model] %s\n", FormatModel(model, order))
}

func (p *Printer) Action(format string, args ...interface{}) {
	if p == nil {
		return
	}
	p.printf("[Action] %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) Decision(action string) {
	p.printf("[Decision] Chosen action: %s\n", action)
}

// Feedback prints the critic verdict of a single step
func (p *Printer) Feedback(action string, reward, total float64) {
	if p == nil {
		return
	}
	r := p.au.Green(fmt.Sprintf("%g", reward))
	if reward < 0 {
		r = p.au.Red(fmt.Sprintf("%g", reward))
	}
	p.printf("[Feedback] Action=%s, Reward=%s, Total=%g\n", action, r, total)
}

func (p *Printer) Line(format string, args ...interface{}) {
	p.printf(format+"\n", args...)
}

func (p *Printer) Success(format string, args ...interface{}) {
	if p == nil {
		return
	}
	p.printf("%s\n", p.au.Bold(p.au.Green(fmt.Sprintf(format, args...))))
}

func (p *Printer) Warn(format string, args ...interface{}) {
	if p == nil {
		return
	}
	p.printf("%s\n", p.au.Yellow(fmt.Sprintf(format, args...)))
}

func (p *Printer) Final(w *World) {
	p.printf("Final environment: %s\n", w)
}

// FormatModel renders an internal model in room order
func FormatModel(model map[Room]Status, order []Room) string {
	out := "{"
	first := true
	for _, r := range order {
		s, ok := model[r]
		if !ok {
			continue
		}
		if !first {
			out += ", "
		}
		out += fmt.Sprintf("%s: %s", r, s)
		first = false
	}
	return out + "}"
}

package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"dayslot/pkg/drop"
	"dayslot/pkg/slot"
)

var (
	apiBase = "http://localhost:8080/"
	theme   *material.Theme
)

// Pages
const (
	pageBoard = iota
	pagePills
)

type UI struct {
	currentPage int

	// Nav buttons
	navBoard widget.Clickable
	navPills widget.Clickable

	// Board
	boardList     widget.List
	board         Board
	newTaskEditor widget.Editor
	createTaskBtn widget.Clickable
	refreshBtn    widget.Clickable

	// held is the id of the picked-up task; the next zone click is its
	// put-down. Empty means nothing is held.
	held      string
	heldTitle string

	pickBtn []widget.Clickable // one per visible task
	zoneBtn []widget.Clickable // pool + one per slot

	// Pills
	pills   []Pill
	pillBtn []widget.Clickable
}

type Task struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slot  string `json:"slot"`
}

type Bucket struct {
	Slot  string `json:"slot"`
	Tasks []Task `json:"tasks"`
}

type Board struct {
	Pool    []Task   `json:"pool"`
	Buckets []Bucket `json:"buckets"`
}

type Pill struct {
	SlotIndex int  `json:"slot_index"`
	Taken     bool `json:"taken"`
}

func main() {
	if base := os.Getenv("API_BASE"); base != "" {
		apiBase = base
	}

	theme = material.NewTheme()
	theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	theme.Palette.Bg = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF}
	theme.Palette.Fg = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	theme.Palette.ContrastBg = color.NRGBA{R: 0x30, G: 0x60, B: 0xA0, A: 0xFF}
	theme.Palette.ContrastFg = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	ui := &UI{}
	ui.boardList.Axis = layout.Vertical
	ui.newTaskEditor.SingleLine = true

	go ui.pollData()

	go func() {
		w := new(app.Window)
		w.Option(app.Title("dayslot"))
		w.Option(app.Size(unit.Dp(900), unit.Dp(800)))
		if err := ui.run(w); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func (ui *UI) run(w *app.Window) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			ui.handleClicks(gtx)
			ui.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (ui *UI) handleClicks(gtx layout.Context) {
	if ui.navBoard.Clicked(gtx) {
		ui.currentPage = pageBoard
	}
	if ui.navPills.Clicked(gtx) {
		ui.currentPage = pagePills
	}
	if ui.refreshBtn.Clicked(gtx) {
		go ui.fetchAll()
	}
	if ui.createTaskBtn.Clicked(gtx) {
		title := ui.newTaskEditor.Text()
		if title != "" {
			go ui.createTask(title)
			ui.newTaskEditor.SetText("")
		}
	}

	// pick up: one click per task card
	tasks := ui.visibleTasks()
	for i := range ui.pickBtn {
		if i < len(tasks) && ui.pickBtn[i].Clicked(gtx) {
			if ui.held == tasks[i].ID {
				ui.held, ui.heldTitle = "", "" // click again to cancel
			} else {
				ui.held, ui.heldTitle = tasks[i].ID, tasks[i].Title
			}
		}
	}

	// put down: pool zone is index 0, slot zones follow in calendar order
	zones := ui.zoneIDs()
	for i := range ui.zoneBtn {
		if i < len(zones) && ui.zoneBtn[i].Clicked(gtx) && ui.held != "" {
			go ui.sendDrop(string(drop.KindTask), ui.held, zones[i])
			ui.held, ui.heldTitle = "", ""
		}
	}

	// pill tokens: a click drops the token on its opposite position
	for i := range ui.pillBtn {
		if i < len(ui.pills) && ui.pillBtn[i].Clicked(gtx) {
			p := ui.pills[i]
			zone := drop.PillZone(p.SlotIndex, !p.Taken)
			go ui.sendDrop(string(drop.KindPill), fmt.Sprintf("%d", p.SlotIndex), zone)
		}
	}
}

// visibleTasks flattens the board in display order: pool first, then
// each bucket. Must match layoutBoard's ordering of pickBtn.
func (ui *UI) visibleTasks() []Task {
	var out []Task
	out = append(out, ui.board.Pool...)
	for _, b := range ui.board.Buckets {
		out = append(out, b.Tasks...)
	}
	return out
}

// zoneIDs lists drop zones in display order: pool, then one per slot.
func (ui *UI) zoneIDs() []string {
	out := []string{drop.TaskZone(slot.Unscheduled)}
	for _, b := range ui.board.Buckets {
		out = append(out, drop.TaskZone(slot.Label(b.Slot)))
	}
	return out
}

func (ui *UI) layout(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return ui.layoutNav(gtx)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(16), Right: unit.Dp(16), Bottom: unit.Dp(16), Left: unit.Dp(16)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				switch ui.currentPage {
				case pagePills:
					return ui.layoutPills(gtx)
				default:
					return ui.layoutBoard(gtx)
				}
			})
		}),
	)
}

func (ui *UI) layoutNav(gtx layout.Context) layout.Dimensions {
	gtx.Constraints.Min.X = gtx.Dp(unit.Dp(140))
	gtx.Constraints.Max.X = gtx.Dp(unit.Dp(140))
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(16), Bottom: unit.Dp(16), Left: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.H6(theme, "dayslot")
				label.Color = theme.Palette.ContrastFg
				return label.Layout(gtx)
			})
		}),
		layout.Rigid(navBtn(theme, &ui.navBoard, "Board", ui.currentPage == pageBoard)),
		layout.Rigid(navBtn(theme, &ui.navPills, "Pills", ui.currentPage == pagePills)),
	)
}

func navBtn(th *material.Theme, btn *widget.Clickable, label string, active bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(2), Bottom: unit.Dp(2), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th, btn, label)
			if active {
				b.Background = th.Palette.ContrastBg
			} else {
				b.Background = color.NRGBA{A: 0}
			}
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		})
	}
}

func (ui *UI) layoutBoard(gtx layout.Context) layout.Dimensions {
	// keep the widget pools sized to the data
	tasks := ui.visibleTasks()
	for len(ui.pickBtn) < len(tasks) {
		ui.pickBtn = append(ui.pickBtn, widget.Clickable{})
	}
	zones := ui.zoneIDs()
	for len(ui.zoneBtn) < len(zones) {
		ui.zoneBtn = append(ui.zoneBtn, widget.Clickable{})
	}

	heading := "Board"
	if ui.held != "" {
		heading = fmt.Sprintf("Holding %q: click a slot to drop it", ui.heldTitle)
	}

	// first pickBtn index of each row; rows can be laid out lazily, so a
	// running counter would drift from visibleTasks ordering
	offsets := make([]int, 1+len(ui.board.Buckets))
	offsets[0] = 0
	next := len(ui.board.Pool)
	for i, b := range ui.board.Buckets {
		offsets[i+1] = next
		next += len(b.Tasks)
	}

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.H5(theme, heading).Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					ed := material.Editor(theme, &ui.newTaskEditor, "New task title...")
					return ed.Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return material.Button(theme, &ui.createTaskBtn, "Create").Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return material.Button(theme, &ui.refreshBtn, "Refresh").Layout(gtx)
				}),
			)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			// one row per zone: pool first, then the calendar
			rows := 1 + len(ui.board.Buckets)
			return material.List(theme, &ui.boardList).Layout(gtx, rows, func(gtx layout.Context, i int) layout.Dimensions {
				if i == 0 {
					return ui.layoutZone(gtx, "Pool", 0, ui.board.Pool, offsets[0])
				}
				b := ui.board.Buckets[i-1]
				return ui.layoutZone(gtx, b.Slot, i, b.Tasks, offsets[i])
			})
		}),
	)
}

func (ui *UI) layoutZone(gtx layout.Context, title string, zoneIdx int, tasks []Task, base int) layout.Dimensions {
	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Dp(unit.Dp(72))
			b := material.Button(theme, &ui.zoneBtn[zoneIdx], title)
			if ui.held != "" {
				b.Background = theme.Palette.ContrastBg
			} else {
				b.Background = color.NRGBA{R: 0x28, G: 0x28, B: 0x28, A: 0xFF}
			}
			return b.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
	}
	for j := range tasks {
		t := tasks[j]
		idx := base + j
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			b := material.Button(theme, &ui.pickBtn[idx], t.Title)
			if ui.held == t.ID {
				b.Background = color.NRGBA{R: 0xA0, G: 0x60, B: 0x20, A: 0xFF}
			} else {
				b.Background = color.NRGBA{R: 0x20, G: 0x40, B: 0x30, A: 0xFF}
			}
			return layout.Inset{Right: unit.Dp(4)}.Layout(gtx, b.Layout)
		}))
	}
	return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
	})
}

func (ui *UI) layoutPills(gtx layout.Context) layout.Dimensions {
	for len(ui.pillBtn) < len(ui.pills) {
		ui.pillBtn = append(ui.pillBtn, widget.Clickable{})
	}
	slots := ui.slotLabels()

	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.H5(theme, "Pills").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
	}
	for i := range ui.pills {
		p := ui.pills[i]
		label := fmt.Sprintf("%d", p.SlotIndex)
		if p.SlotIndex < len(slots) {
			label = slots[p.SlotIndex]
		}
		state := "not taken"
		bg := color.NRGBA{R: 0x40, G: 0x20, B: 0x20, A: 0xFF}
		if p.Taken {
			state = "taken"
			bg = color.NRGBA{R: 0x20, G: 0x50, B: 0x20, A: 0xFF}
		}
		btn := &ui.pillBtn[i]
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			b := material.Button(theme, btn, fmt.Sprintf("%s: %s", label, state))
			b.Background = bg
			return layout.Inset{Bottom: unit.Dp(2)}.Layout(gtx, b.Layout)
		}))
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (ui *UI) slotLabels() []string {
	out := make([]string, 0, len(ui.board.Buckets))
	for _, b := range ui.board.Buckets {
		out = append(out, b.Slot)
	}
	return out
}

// Data fetching

func (ui *UI) pollData() {
	ui.fetchAll()
	ticker := time.NewTicker(3 * time.Second)
	for range ticker.C {
		ui.fetchAll()
	}
}

func (ui *UI) fetchAll() {
	ui.fetchBoard()
	ui.fetchPills()
}

func (ui *UI) fetchBoard() {
	var b Board
	if err := httpGetJSON(apiBase+"api/board", &b); err != nil {
		log.Printf("fetch board: %v", err)
		return
	}
	ui.board = b
}

func (ui *UI) fetchPills() {
	var pills []Pill
	if err := httpGetJSON(apiBase+"api/pills", &pills); err != nil {
		log.Printf("fetch pills: %v", err)
		return
	}
	ui.pills = pills
}

func (ui *UI) createTask(title string) {
	body := fmt.Sprintf(`{"title":%q}`, title)
	resp, err := http.Post(apiBase+"api/tasks", "application/json", strings.NewReader(body))
	if err != nil {
		log.Printf("create task: %v", err)
		return
	}
	resp.Body.Close()
	ui.fetchBoard()
}

// sendDrop emits one discrete drop event: an item released on a zone.
func (ui *UI) sendDrop(kind, itemID, zone string) {
	body := fmt.Sprintf(`{"kind":%q,"item_id":%q,"zone":%q}`, kind, itemID, zone)
	resp, err := http.Post(apiBase+"api/drops", "application/json", strings.NewReader(body))
	if err != nil {
		log.Printf("drop: %v", err)
		return
	}
	resp.Body.Close()
	ui.fetchAll()
}

func httpGetJSON(url string, v any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

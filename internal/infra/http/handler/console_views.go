package handler

import (
	"strconv"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/jwt"
)

// Colspan is the column count including the selection column.
func (lp listPage) Colspan() int {
	return len(lp.Headers) + 1
}

// pageData is what the layout template receives.
type pageData struct {
	AppName  string
	Title    string
	Identity *jwt.Identity
	Menu     []menuLink
	CSRF     string
	Content  any
}

type menuLink struct {
	Title  string
	Href   string
	Active bool
}

type listPage struct {
	Title         string
	Singular      string
	Base          string
	Query         ListQuery
	SearchDelayMS int64
	ExportHref    string
	CreateHref    string
	SelectedCount int
	ClearSelHref  string
	Headers       []headerCell
	Rows          []rowView
	Loading       bool
	Empty         bool
	Pager         *pagerView
	Drawer        *drawerView
	Modal         *modalView
}

type headerCell struct {
	Header string
	Href   string
	Dir    string
}

type rowView struct {
	ID         string
	EditHref   string
	DeleteHref string
	SelectHref string
	Selected   bool
	Cells      []cellView
}

type cellView struct {
	Text    string
	Href    string
	Actions bool
}

type pagerView struct {
	Start    int
	End      int
	Total    int
	Number   int
	Count    int
	PrevHref string
	NextHref string
	Sizes    []sizeOption
}

type sizeOption struct {
	Size     int
	Href     string
	Selected bool
}

type drawerView struct {
	Title     string
	Action    string
	CloseHref string
	Fields    []fieldView
}

type fieldView struct {
	Key         string
	Label       string
	Type        string
	Value       string
	Placeholder string
	Min         string
	Error       string
	Options     []optionView
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type modalView struct {
	Title       string
	Description string
	ConfirmText string
	CancelText  string
	Action      string
	CancelHref  string
}

func buildListPage(view *console.View, q ListQuery, searchDelay time.Duration) listPage {
	s := view.Schema()
	t := view.Table()
	base := listPath(s)
	page := view.Page()

	lp := listPage{
		Title:         s.Title,
		Singular:      s.Singular,
		Base:          base,
		Query:         q,
		SearchDelayMS: searchDelay.Milliseconds(),
		ExportHref:    q.WithPage(1).URL(base + "/export.csv"),
		CreateHref:    q.URL(base + "/new"),
		Loading:       view.Loading(),
		Empty:         page.Empty,
		SelectedCount: len(t.Selected()),
	}
	if lp.SelectedCount > 0 {
		lp.ClearSelHref = q.WithoutSelection().URL(base)
	}

	active := t.Sort()
	for _, c := range s.Columns {
		h := headerCell{Header: c.Header}
		if !c.NoSort {
			h.Href = q.WithSort(t.NextSort(c.Key)).URL(base)
			if active.Key == c.Key {
				h.Dir = active.Dir.String()
			}
		}
		lp.Headers = append(lp.Headers, h)
	}

	for _, row := range page.Rows {
		id := row.Record.ID()
		rv := rowView{
			ID:         id,
			EditHref:   q.URL(rowPath(s, id) + "/edit"),
			DeleteHref: q.URL(rowPath(s, id) + "/delete"),
			SelectHref: q.WithToggled(id).URL(base),
			Selected:   t.IsSelected(id),
		}
		for _, c := range s.Columns {
			if c.Actions {
				rv.Cells = append(rv.Cells, cellView{Actions: true})
				continue
			}
			rv.Cells = append(rv.Cells, cellView{Text: c.Display(row.Record), Href: c.Href(row.Record)})
		}
		lp.Rows = append(lp.Rows, rv)
	}

	if !page.Empty {
		lp.Pager = buildPager(page, q, base)
	}
	if d := view.Drawer(); d.IsOpen() {
		lp.Drawer = buildDrawer(d, q, base)
	}
	if m := view.Modal(); m.IsOpen() {
		lp.Modal = &modalView{
			Title:       m.Title,
			Description: m.Description,
			ConfirmText: m.ConfirmText,
			CancelText:  m.CancelText,
			Action:      q.URL(rowPath(s, m.Target().ID()) + "/delete"),
			CancelHref:  q.URL(base),
		}
	}
	return lp
}

func buildPager(page console.PageView, q ListQuery, base string) *pagerView {
	p := &pagerView{
		Start:  page.Start,
		End:    page.End,
		Total:  page.Total,
		Number: page.Number,
		Count:  page.Count,
	}
	if page.HasPrev() {
		p.PrevHref = q.WithPage(page.Number - 1).URL(base)
	}
	if page.HasNext() {
		p.NextHref = q.WithPage(page.Number + 1).URL(base)
	}
	for _, size := range page.Sizes {
		p.Sizes = append(p.Sizes, sizeOption{
			Size:     size,
			Href:     q.WithSize(size).URL(base),
			Selected: size == page.Size,
		})
	}
	return p
}

func buildDrawer(d *console.Drawer, q ListQuery, base string) *drawerView {
	s := d.Schema()
	dv := &drawerView{
		Title:     "Add " + s.Singular,
		Action:    q.URL(base),
		CloseHref: q.URL(base),
	}
	if d.Mode() == console.ModeEdit {
		dv.Title = "Edit " + s.Singular
		dv.Action = q.URL(rowPath(s, d.Item().ID()))
	}

	values := d.Values()
	errs := d.Errors()
	for _, f := range d.VisibleFields() {
		fv := fieldView{
			Key:         f.Key,
			Label:       f.Label,
			Type:        inputType(f),
			Value:       values[f.Key],
			Placeholder: f.Placeholder,
			Error:       errs[f.Key],
		}
		if f.Kind == console.KindNumber {
			fv.Min = strconv.FormatFloat(f.Min, 'f', -1, 64)
		}
		if f.IsSelect() {
			for _, o := range d.Options(f.Key) {
				fv.Options = append(fv.Options, optionView{
					Value:    o.Value,
					Label:    o.Label,
					Selected: o.Value == fv.Value,
				})
			}
		}
		dv.Fields = append(dv.Fields, fv)
	}
	return dv
}

func inputType(f console.Field) string {
	if f.IsSelect() {
		return "select"
	}
	switch f.Kind {
	case console.KindTextarea:
		return "textarea"
	case console.KindNumber:
		return "number"
	case console.KindDatetime:
		return "datetime-local"
	case console.KindPassword:
		return "password"
	default:
		return "text"
	}
}

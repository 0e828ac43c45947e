// Package scene is the mockup canvas: boxes, text labels and print-area
// guides under a pan/zoom viewport. *Canvas implements editor.Surface.
package scene

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/fogleman/gg"

	"mockup/internal/editor"
)

type Kind string

const (
	KindBox   Kind = "box"
	KindText  Kind = "text"
	KindGuide Kind = "guide"
)

const (
	minBoxWidth  = 8
	minBoxHeight = 3
)

// Object is one drawable item. Positions are in world units; the terminal
// renderer treats one unit as one cell.
type Object struct {
	ID         editor.ObjectID `yaml:"id"`
	Kind       Kind            `yaml:"kind"`
	X          float64         `yaml:"x"`
	Y          float64         `yaml:"y"`
	Width      float64         `yaml:"width,omitempty"`
	Height     float64         `yaml:"height,omitempty"`
	Lines      []string        `yaml:"lines,omitempty"`
	Fill       string          `yaml:"fill,omitempty"`
	Stroke     string          `yaml:"stroke,omitempty"`
	Selectable bool            `yaml:"selectable"`
}

func (o *Object) Text() string {
	return strings.Join(o.Lines, "\n")
}

func (o *Object) SetText(text string) {
	o.Lines = strings.Split(text, "\n")
	if o.Kind == KindBox {
		o.fitBox()
	}
}

// fitBox sizes a box around its text, never below the minimum.
func (o *Object) fitBox() {
	if len(o.Lines) == 0 {
		o.Lines = []string{""}
	}
	width := minBoxWidth
	for _, line := range o.Lines {
		width = max(width, utf8.RuneCountInString(line)+2)
	}
	o.Width = float64(width)
	o.Height = float64(max(len(o.Lines)+2, minBoxHeight))
}

func (o Object) clone() Object {
	o.Lines = slices.Clone(o.Lines)
	return o
}

type Canvas struct {
	objects  []Object
	active   []editor.ObjectID
	nextID   editor.ObjectID
	viewport gg.Matrix
	renders  int
}

func NewCanvas() *Canvas {
	return &Canvas{
		nextID:   1,
		viewport: gg.Identity(),
	}
}

func (c *Canvas) add(o Object) editor.ObjectID {
	o.ID = c.nextID
	c.nextID++
	c.objects = append(c.objects, o)
	return o.ID
}

func (c *Canvas) AddBox(x, y float64, text string) editor.ObjectID {
	o := Object{Kind: KindBox, X: x, Y: y, Selectable: true}
	o.SetText(text)
	return c.add(o)
}

func (c *Canvas) AddText(x, y float64, text string) editor.ObjectID {
	o := Object{Kind: KindText, X: x, Y: y, Selectable: true}
	o.SetText(text)
	return c.add(o)
}

// AddGuide marks a print area. Guides are never selectable.
func (c *Canvas) AddGuide(x, y, width, height float64) editor.ObjectID {
	return c.add(Object{Kind: KindGuide, X: x, Y: y, Width: width, Height: height})
}

// Object returns a copy of the object with the given id.
func (c *Canvas) Object(id editor.ObjectID) (Object, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return Object{}, false
	}
	return c.objects[i].clone(), true
}

// Items returns copies of all objects in paint order.
func (c *Canvas) Items() []Object {
	out := make([]Object, len(c.objects))
	for i, o := range c.objects {
		out[i] = o.clone()
	}
	return out
}

func (c *Canvas) Len() int { return len(c.objects) }

func (c *Canvas) indexOf(id editor.ObjectID) int {
	for i := range c.objects {
		if c.objects[i].ID == id {
			return i
		}
	}
	return -1
}

// MoveObjects shifts the given objects. Unknown ids are skipped.
func (c *Canvas) MoveObjects(ids []editor.ObjectID, dx, dy float64) {
	for _, id := range ids {
		if i := c.indexOf(id); i >= 0 {
			c.objects[i].X += dx
			c.objects[i].Y += dy
		}
	}
}

// SetObjectText replaces the text of a box or label.
func (c *Canvas) SetObjectText(id editor.ObjectID, text string) bool {
	i := c.indexOf(id)
	if i < 0 || c.objects[i].Kind == KindGuide {
		return false
	}
	c.objects[i].SetText(text)
	return true
}

// Selectable returns the ids of selectable objects in paint order.
func (c *Canvas) Selectable() []editor.ObjectID {
	var ids []editor.ObjectID
	for _, o := range c.objects {
		if o.Selectable {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func (c *Canvas) ActiveObjects() []editor.ObjectID {
	return slices.Clone(c.active)
}

// SetActiveObjects keeps only ids that are present and selectable.
func (c *Canvas) SetActiveObjects(ids []editor.ObjectID) {
	active := make([]editor.ObjectID, 0, len(ids))
	for _, id := range ids {
		i := c.indexOf(id)
		if i < 0 || !c.objects[i].Selectable || slices.Contains(active, id) {
			continue
		}
		active = append(active, id)
	}
	c.active = active
}

func (c *Canvas) DiscardActiveObject() {
	c.active = nil
}

func (c *Canvas) IsActive(id editor.ObjectID) bool {
	return slices.Contains(c.active, id)
}

func (c *Canvas) Objects() []editor.ObjectRef {
	refs := make([]editor.ObjectRef, len(c.objects))
	for i, o := range c.objects {
		refs[i] = editor.ObjectRef{ID: o.ID, Selectable: o.Selectable}
	}
	return refs
}

// Remove deletes objects and drops them from the selection.
func (c *Canvas) Remove(ids ...editor.ObjectID) {
	if len(ids) == 0 {
		return
	}
	c.objects = slices.DeleteFunc(c.objects, func(o Object) bool {
		return slices.Contains(ids, o.ID)
	})
	c.active = slices.DeleteFunc(c.active, func(id editor.ObjectID) bool {
		return slices.Contains(ids, id)
	})
}

// PanBy adds to the translation part of the viewport matrix.
func (c *Canvas) PanBy(dx, dy float64) {
	c.viewport.X0 += dx
	c.viewport.Y0 += dy
}

func (c *Canvas) Viewport() gg.Matrix { return c.viewport }

// WorldPoint maps a screen cell back to world units. The viewport only
// ever scales and translates; a zero scale, as in a zero Canvas, counts
// as 1.
func (c *Canvas) WorldPoint(sx, sy float64) (float64, float64) {
	sxx, syy := c.viewport.XX, c.viewport.YY
	if sxx == 0 {
		sxx = 1
	}
	if syy == 0 {
		syy = 1
	}
	return (sx - c.viewport.X0) / sxx, (sy - c.viewport.Y0) / syy
}

// ObjectsText joins the text of the given boxes and labels in paint order.
// Guides and unknown ids are skipped.
func (c *Canvas) ObjectsText(ids []editor.ObjectID) string {
	var parts []string
	for _, o := range c.objects {
		if o.Kind == KindGuide || !slices.Contains(ids, o.ID) {
			continue
		}
		parts = append(parts, o.Text())
	}
	return strings.Join(parts, "\n")
}

// RenderAll only counts requests; terminal hosts redraw on their own loop.
func (c *Canvas) RenderAll() { c.renders++ }

func (c *Canvas) Renders() int { return c.renders }

package scene

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"mockup/internal/editor"
)

func TestAddBoxFitsText(t *testing.T) {
	c := NewCanvas()
	id := c.AddBox(1, 1, "front print\nlogo")

	o, ok := c.Object(id)
	if !ok {
		t.Fatalf("box %d not found", id)
	}
	if o.Width != float64(len("front print")+2) {
		t.Errorf("width = %v, want %d", o.Width, len("front print")+2)
	}
	if o.Height != 4 {
		t.Errorf("height = %v, want 4", o.Height)
	}

	small := c.AddBox(0, 0, "")
	o, _ = c.Object(small)
	if o.Width != minBoxWidth || o.Height != minBoxHeight {
		t.Errorf("empty box size = %vx%v, want %dx%d", o.Width, o.Height, minBoxWidth, minBoxHeight)
	}
}

func TestAddBoxCountsRunes(t *testing.T) {
	c := NewCanvas()
	o, _ := c.Object(c.AddBox(0, 0, "crème brûlée"))
	if o.Width != 14 {
		t.Errorf("width = %v, want 14", o.Width)
	}
}

func TestObjectsText(t *testing.T) {
	c := NewCanvas()
	a := c.AddBox(0, 0, "front\nlogo")
	guide := c.AddGuide(0, 0, 10, 10)
	b := c.AddText(0, 5, "tag")

	if got := c.ObjectsText([]editor.ObjectID{b, guide, a, 99}); got != "front\nlogo\ntag" {
		t.Errorf("text = %q", got)
	}
	if got := c.ObjectsText(nil); got != "" {
		t.Errorf("text of nothing = %q", got)
	}
}

func TestWorldPointOnZeroCanvas(t *testing.T) {
	var c Canvas
	if x, y := c.WorldPoint(3, 4); x != 3 || y != 4 {
		t.Errorf("world point = (%v,%v), want (3,4)", x, y)
	}
}

func TestSetActiveObjectsSkipsGuidesAndUnknownIDs(t *testing.T) {
	c := NewCanvas()
	box := c.AddBox(0, 0, "a")
	guide := c.AddGuide(0, 0, 20, 10)
	text := c.AddText(5, 5, "b")

	c.SetActiveObjects([]editor.ObjectID{box, guide, 99, text, box})

	want := []editor.ObjectID{box, text}
	if got := c.ActiveObjects(); !slices.Equal(got, want) {
		t.Errorf("active = %v, want %v", got, want)
	}
}

func TestRemoveDropsSelection(t *testing.T) {
	c := NewCanvas()
	a := c.AddBox(0, 0, "a")
	b := c.AddBox(10, 0, "b")
	c.SetActiveObjects([]editor.ObjectID{a, b})

	c.Remove(a)

	if _, ok := c.Object(a); ok {
		t.Errorf("object %d still present", a)
	}
	if got := c.ActiveObjects(); !slices.Equal(got, []editor.ObjectID{b}) {
		t.Errorf("active = %v, want [%d]", got, b)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	c := NewCanvas()
	c.AddGuide(0, 0, 30, 12)
	c.AddBox(2, 2, "chest logo")
	c.AddText(4, 8, "SIZE M")

	doc, err := c.ToDocument()
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}

	other := NewCanvas()
	if err := other.LoadDocument(doc); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	again, err := other.ToDocument()
	if err != nil {
		t.Fatalf("ToDocument after load: %v", err)
	}
	if !bytes.Equal(doc, again) {
		t.Errorf("round trip changed document:\n%s\nvs\n%s", doc, again)
	}

	// ids keep growing after a load
	next := other.AddBox(0, 0, "new")
	if next != 4 {
		t.Errorf("next id = %d, want 4", next)
	}
}

func TestLoadDocumentRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not yaml", doc: "{{{"},
		{name: "wrong format", doc: "format: other\nversion: 1\nobjects: []\n"},
		{name: "wrong version", doc: "format: mockup\nversion: 9\nobjects: []\n"},
		{name: "unknown kind", doc: "format: mockup\nversion: 1\nobjects:\n  - id: 1\n    kind: blob\n"},
		{name: "duplicate ids", doc: "format: mockup\nversion: 1\nobjects:\n  - id: 1\n    kind: box\n  - id: 1\n    kind: text\n"},
		{name: "selectable guide", doc: "format: mockup\nversion: 1\nobjects:\n  - id: 1\n    kind: guide\n    selectable: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas()
			c.AddBox(0, 0, "keep me")
			before, _ := c.ToDocument()

			if err := c.LoadDocument(editor.Document(tt.doc)); err == nil {
				t.Fatal("expected error")
			}
			after, _ := c.ToDocument()
			if !bytes.Equal(before, after) {
				t.Error("failed load changed the canvas")
			}
		})
	}
}

func TestLoadDocumentKeepsSurvivingSelection(t *testing.T) {
	c := NewCanvas()
	a := c.AddBox(0, 0, "a")
	doc, _ := c.ToDocument()
	b := c.AddBox(10, 0, "b")
	c.SetActiveObjects([]editor.ObjectID{a, b})

	if err := c.LoadDocument(doc); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if got := c.ActiveObjects(); !slices.Equal(got, []editor.ObjectID{a}) {
		t.Errorf("active = %v, want [%d]", got, a)
	}
}

func TestSerializeAndInsertObjects(t *testing.T) {
	c := NewCanvas()
	a := c.AddBox(1, 2, "a")
	c.AddBox(20, 2, "b")

	frag, err := c.SerializeObjects([]editor.ObjectID{a})
	if err != nil {
		t.Fatalf("SerializeObjects: %v", err)
	}

	ids, err := c.InsertObjects(frag, 3, 4)
	if err != nil {
		t.Fatalf("InsertObjects: %v", err)
	}
	if len(ids) != 1 || ids[0] == a {
		t.Fatalf("inserted ids = %v, want one fresh id", ids)
	}
	o, _ := c.Object(ids[0])
	if o.X != 4 || o.Y != 6 {
		t.Errorf("pasted at (%v,%v), want (4,6)", o.X, o.Y)
	}
	if o.Text() != "a" {
		t.Errorf("pasted text = %q, want %q", o.Text(), "a")
	}

	if _, err := c.SerializeObjects([]editor.ObjectID{42}); err == nil {
		t.Error("expected error serializing unknown ids")
	}
	if _, err := c.InsertObjects([]byte("objects:\n  - kind: nope\n"), 0, 0); err == nil {
		t.Error("expected error inserting bad fragment")
	}
	if c.Len() != 3 {
		t.Errorf("len = %d, want 3", c.Len())
	}
}

func TestPanByMovesRender(t *testing.T) {
	c := NewCanvas()
	c.AddText(0, 0, "hi")

	c.PanBy(3, 1)
	if m := c.Viewport(); m.X0 != 3 || m.Y0 != 1 {
		t.Fatalf("translation = (%v,%v), want (3,1)", m.X0, m.Y0)
	}

	if x, y := c.WorldPoint(3, 1); x != 0 || y != 0 {
		t.Errorf("world point = (%v,%v), want origin", x, y)
	}

	lines := c.Render(10, 3)
	if got := lines[1]; got != "   hi     " {
		t.Errorf("row 1 = %q", got)
	}
}

func TestRenderMarksActiveBoxes(t *testing.T) {
	c := NewCanvas()
	id := c.AddBox(0, 0, "tee")

	plain := strings.Join(c.Render(12, 4), "\n")
	if !strings.Contains(plain, "+------+") {
		t.Errorf("unselected box not drawn:\n%s", plain)
	}

	c.SetActiveObjects([]editor.ObjectID{id})
	selected := strings.Join(c.Render(12, 4), "\n")
	if !strings.Contains(selected, "########") {
		t.Errorf("selected box not highlighted:\n%s", selected)
	}
	if !strings.Contains(selected, "|tee") && !strings.Contains(selected, "#tee") {
		t.Errorf("box text missing:\n%s", selected)
	}
}

func TestExportPNG(t *testing.T) {
	c := NewCanvas()
	var buf bytes.Buffer
	if err := c.ExportPNG(&buf); !errors.Is(err, ErrEmptyScene) {
		t.Fatalf("empty export err = %v, want ErrEmptyScene", err)
	}

	c.AddGuide(0, 0, 20, 10)
	c.AddBox(2, 2, "logo")
	c.AddText(2, 7, "caption")
	if err := c.ExportPNG(&buf); err != nil {
		t.Fatalf("ExportPNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestExportText(t *testing.T) {
	c := NewCanvas()
	c.AddText(0, 0, "hello")

	var buf bytes.Buffer
	if err := c.ExportText(&buf, 8, 2); err != nil {
		t.Fatalf("ExportText: %v", err)
	}
	if got, want := buf.String(), "hello   \n        \n"; got != want {
		t.Errorf("export = %q, want %q", got, want)
	}
}

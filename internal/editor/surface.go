// Package editor is the interaction core of the mockup editor: it turns key
// chords into commands, keeps a linear snapshot history for undo/redo, owns
// the clipboard and drives the viewport. It never looks inside scene
// objects; everything goes through a Surface.
package editor

// ObjectID identifies one object on a Surface.
type ObjectID int

// ObjectRef is the part of a scene object the core is allowed to see.
type ObjectRef struct {
	ID         ObjectID
	Selectable bool
}

// Document is a full serialized capture of a scene. Treat it as immutable.
type Document []byte

// Surface is the mutable 2D scene the editor works on.
type Surface interface {
	ActiveObjects() []ObjectID
	SetActiveObjects(ids []ObjectID)
	DiscardActiveObject()

	Objects() []ObjectRef
	Remove(ids ...ObjectID)

	ToDocument() (Document, error)
	LoadDocument(doc Document) error

	// SerializeObjects deep-copies the given objects into a standalone
	// fragment that InsertObjects can read back.
	SerializeObjects(ids []ObjectID) ([]byte, error)
	// InsertObjects adds the objects of a fragment shifted by dx, dy and
	// returns the ids it assigned, in fragment order.
	InsertObjects(fragment []byte, dx, dy float64) ([]ObjectID, error)

	// PanBy shifts the viewport translation. It is not a content edit.
	PanBy(dx, dy float64)
	RenderAll()
}

// TextSurface is implemented by surfaces that can give the plain text of
// objects. Copy mirrors that text instead of the raw fragment.
type TextSurface interface {
	ObjectsText(ids []ObjectID) string
}

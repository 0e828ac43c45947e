package scene

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"mockup/internal/editor"
)

const (
	documentFormat  = "mockup"
	documentVersion = 1
)

type document struct {
	Format  string   `yaml:"format"`
	Version int      `yaml:"version"`
	Objects []Object `yaml:"objects"`
}

type fragment struct {
	Objects []Object `yaml:"objects"`
}

// ToDocument serializes every object. The viewport is not part of it.
func (c *Canvas) ToDocument() (editor.Document, error) {
	data, err := yaml.Marshal(document{
		Format:  documentFormat,
		Version: documentVersion,
		Objects: c.objects,
	})
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// LoadDocument replaces the scene with doc. The canvas is unchanged when
// doc does not decode or validate.
func (c *Canvas) LoadDocument(doc editor.Document) error {
	var d document
	if err := yaml.Unmarshal(doc, &d); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if d.Format != documentFormat {
		return fmt.Errorf("unknown document format %q", d.Format)
	}
	if d.Version != documentVersion {
		return fmt.Errorf("unsupported document version %d", d.Version)
	}
	if err := validateObjects(d.Objects, true); err != nil {
		return err
	}

	c.objects = d.Objects
	for _, o := range c.objects {
		if o.ID >= c.nextID {
			c.nextID = o.ID + 1
		}
	}
	c.SetActiveObjects(c.active)
	return nil
}

func validateObjects(objects []Object, checkIDs bool) error {
	seen := make(map[editor.ObjectID]bool, len(objects))
	for _, o := range objects {
		switch o.Kind {
		case KindBox, KindText:
		case KindGuide:
			if o.Selectable {
				return fmt.Errorf("guide %d: guides cannot be selectable", o.ID)
			}
		default:
			return fmt.Errorf("object %d: unknown kind %q", o.ID, o.Kind)
		}
		if !checkIDs {
			continue
		}
		if o.ID <= 0 {
			return fmt.Errorf("object has invalid id %d", o.ID)
		}
		if seen[o.ID] {
			return fmt.Errorf("duplicate object id %d", o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}

// SerializeObjects copies the given objects, in paint order, into a
// standalone fragment.
func (c *Canvas) SerializeObjects(ids []editor.ObjectID) ([]byte, error) {
	var f fragment
	for _, o := range c.objects {
		for _, id := range ids {
			if o.ID == id {
				f.Objects = append(f.Objects, o.clone())
				break
			}
		}
	}
	if len(f.Objects) == 0 {
		return nil, errors.New("no objects to serialize")
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}
	return data, nil
}

// InsertObjects adds the objects of a fragment under fresh ids. Nothing is
// inserted when the fragment is invalid.
func (c *Canvas) InsertObjects(data []byte, dx, dy float64) ([]editor.ObjectID, error) {
	var f fragment
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fragment: %w", err)
	}
	if err := validateObjects(f.Objects, false); err != nil {
		return nil, err
	}
	ids := make([]editor.ObjectID, 0, len(f.Objects))
	for _, o := range f.Objects {
		o.X += dx
		o.Y += dy
		ids = append(ids, c.add(o))
	}
	return ids, nil
}

package document

import "encoding/json"

type InDocument struct {
	Project Project               `json:"project"`
	Scenes  map[string]Scene      `json:"scenes"`
	Objects map[string]ObjectNode `json:"objects"`
	Assets  map[string]Asset      `json:"assets"`
}

type Project struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Version   int      `json:"version"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
	Scenes    []string `json:"scenes"`
	Assets    []string `json:"assets"`
}

type Scene struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
	Root       string `json:"root"`
}

type ObjectType string

const (
	ObjectTypeGroup        ObjectType = "Group"
	ObjectTypeShapeRect    ObjectType = "ShapeRect"
	ObjectTypeShapeEllipse ObjectType = "ShapeEllipse"
	ObjectTypeVectorPath   ObjectType = "VectorPath"
	ObjectTypeRasterImage  ObjectType = "RasterImage"
	ObjectTypeDistortion   ObjectType = "Distortion"
)

type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

// ObjectNode is one object of the document tree. Geometry lives in Data,
// in document coordinates; its schema depends on Type (see codec.go).
type ObjectNode struct {
	ID       string          `json:"id"`
	Type     ObjectType      `json:"type"`
	Parent   *string         `json:"parent"`
	Children []string        `json:"children"`
	Style    Style           `json:"style"`
	Visible  bool            `json:"visible"`
	Locked   bool            `json:"locked"`
	Data     json.RawMessage `json:"data"`
}

type Asset struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Name string          `json:"name"`
	URL  string          `json:"url"`
	Meta json.RawMessage `json:"meta"`
}

// NewEmptyDocument creates an empty document for a new project
func NewEmptyDocument(projectID, projectName, sceneID, rootID string) *InDocument {
	return &InDocument{
		Project: Project{
			ID:        projectID,
			Name:      projectName,
			Version:   1,
			CreatedAt: "", // Will be set by caller
			UpdatedAt: "",
			Scenes:    []string{sceneID},
			Assets:    []string{},
		},
		Scenes: map[string]Scene{
			sceneID: {
				ID:         sceneID,
				Name:       "Page 1",
				Width:      595,
				Height:     842,
				Background: "#ffffff",
				Root:       rootID,
			},
		},
		Objects: map[string]ObjectNode{
			rootID: {
				ID:       rootID,
				Type:     ObjectTypeGroup,
				Parent:   nil,
				Children: []string{},
				Style:    Style{Opacity: 1},
				Visible:  true,
				Locked:   false,
				Data:     json.RawMessage(`{}`),
			},
		},
		Assets: map[string]Asset{},
	}
}

// RemoveChild drops childID from the children of parentID, if present.
func (d *InDocument) RemoveChild(parentID, childID string) {
	parent, ok := d.Objects[parentID]
	if !ok {
		return
	}
	newChildren := make([]string, 0, len(parent.Children))
	for _, id := range parent.Children {
		if id != childID {
			newChildren = append(newChildren, id)
		}
	}
	parent.Children = newChildren
	d.Objects[parentID] = parent
}

// InsertChild inserts childID into parentID's children at index, or appends
// when index is nil or out of range.
func (d *InDocument) InsertChild(parentID, childID string, index *int) bool {
	parent, ok := d.Objects[parentID]
	if !ok {
		return false
	}
	if index != nil && *index >= 0 && *index <= len(parent.Children) {
		newChildren := make([]string, 0, len(parent.Children)+1)
		newChildren = append(newChildren, parent.Children[:*index]...)
		newChildren = append(newChildren, childID)
		newChildren = append(newChildren, parent.Children[*index:]...)
		parent.Children = newChildren
	} else {
		parent.Children = append(parent.Children, childID)
	}
	d.Objects[parentID] = parent
	return true
}

// Clone returns a deep copy of the document via JSON.
func (d *InDocument) Clone() (*InDocument, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out InDocument
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

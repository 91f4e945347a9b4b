package collab

import (
	"encoding/json"

	"github.com/inamate/vecdraw/internal/distort"
	"github.com/inamate/vecdraw/internal/geom"
)

type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	UserID      string      `json:"userId,omitempty"`
	DisplayName string      `json:"displayName,omitempty"`
	Cursor      *geom.Point `json:"cursor,omitempty"`
	Selection   []string    `json:"selection,omitempty"`
	Grab        *CornerGrab `json:"grab,omitempty"`
}

// CornerGrab is a distortion corner another client is dragging. Point is
// the live pointer position, ahead of the distort.corner op that commits it.
type CornerGrab struct {
	ObjectID string     `json:"objectId"`
	Corner   int        `json:"corner"`
	Point    geom.Point `json:"point"`
}

// PresenceStatePayload maps client ids to presence.
type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync. Clients may send an empty doc.sync to request a resync.
	TypeDocSync = "doc.sync"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// Operation types
const (
	OpObjectCreate     = "object.create"
	OpObjectDelete     = "object.delete"
	OpObjectStyle      = "object.style"
	OpObjectTransform  = "object.transform"
	OpObjectReparent   = "object.reparent"
	OpObjectVisibility = "object.visibility"
	OpObjectLocked     = "object.locked"
	OpSceneUpdate      = "scene.update"
	OpProjectRename    = "project.rename"
	OpDistortCreate    = "distort.create"
	OpDistortCorner    = "distort.corner"
	OpDistortReset     = "distort.reset"
	OpDistortRemove    = "distort.remove"
)

// WelcomePayload is sent first on every connection.
type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

// DocSyncPayload carries the full document and the sequence it reflects.
type DocSyncPayload struct {
	Document  json.RawMessage `json:"document"`
	ServerSeq int64           `json:"serverSeq"`
}

// ErrorPayload is the payload of error messages.
type ErrorPayload struct {
	Message string `json:"message"`
}

// --- Operation Types ---

// Operation represents a document mutation
type Operation struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	ClientSeq int64           `json:"clientSeq"`
	ObjectID  string          `json:"objectId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"` // Type-specific data

	// For object.transform: a document.TransformOp
	Transform json.RawMessage `json:"transform,omitempty"`

	// For object.style
	Style json.RawMessage `json:"style,omitempty"`

	// For object.create
	Object   json.RawMessage `json:"object,omitempty"`
	ParentID string          `json:"parentId,omitempty"`
	Index    *int            `json:"index,omitempty"`

	// For object.delete
	PreviousObject         json.RawMessage `json:"previousObject,omitempty"`
	PreviousParentChildren []string        `json:"previousParentChildren,omitempty"`

	// For object.reparent
	NewParentID      string `json:"newParentId,omitempty"`
	NewIndex         int    `json:"newIndex,omitempty"`
	PreviousParentID string `json:"previousParentId,omitempty"`
	PreviousIndex    *int   `json:"previousIndex,omitempty"`

	// For object.visibility / object.locked
	Visible      *bool `json:"visible,omitempty"`
	Locked       *bool `json:"locked,omitempty"`
	PreviousBool *bool `json:"previousBool,omitempty"`

	// For scene.update
	SceneID string          `json:"sceneId,omitempty"`
	Changes json.RawMessage `json:"changes,omitempty"`

	// For project.rename
	Name         string `json:"name,omitempty"`
	PreviousName string `json:"previousName,omitempty"`

	// For distort.create (nil means identity) and distort.corner
	Corners *[distort.NumCorners]geom.Point `json:"corners,omitempty"`
	Corner  *int                            `json:"corner,omitempty"`
	Point   *geom.Point                     `json:"point,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string     `json:"operationId"`
	Reason      string     `json:"reason"`
	Conflict    *Operation `json:"conflictingOp,omitempty"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

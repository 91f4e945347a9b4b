package collab

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/inamate/vecdraw/internal/distort"
)

// PresenceManager tracks what every connected client is looking at.
// Entries are keyed by client id so one user may have several tabs open.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // clientID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Update stores p for clientID. A grab on an invalid corner index is
// dropped.
func (pm *PresenceManager) Update(clientID string, p *PresencePayload) {
	if p.Grab != nil && (p.Grab.Corner < 0 || p.Grab.Corner >= distort.NumCorners || p.Grab.ObjectID == "") {
		p.Grab = nil
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[clientID] = p
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, clientID)
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		cp := *v
		cp.Selection = slices.Clone(v.Selection)
		result[k] = &cp
	}
	return result
}

// Prune drops selected and grabbed objects for which exists reports
// false, and returns the client ids whose presence changed.
func (pm *PresenceManager) Prune(exists func(objectID string) bool) []string {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var changed []string
	for clientID, p := range pm.presences {
		n := len(p.Selection)
		p.Selection = slices.DeleteFunc(p.Selection, func(id string) bool { return !exists(id) })
		dirty := len(p.Selection) != n
		if p.Grab != nil && !exists(p.Grab.ObjectID) {
			p.Grab = nil
			dirty = true
		}
		if dirty {
			changed = append(changed, clientID)
		}
	}
	slices.Sort(changed)
	return changed
}

func (pm *PresenceManager) get(clientID string) (PresencePayload, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.presences[clientID]
	if !ok {
		return PresencePayload{}, false
	}
	cp := *p
	cp.Selection = slices.Clone(p.Selection)
	return cp, true
}

func (pm *PresenceManager) StateMessage() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: pm.GetAll()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}

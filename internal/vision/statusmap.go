package vision

import (
	"slices"

	"github.com/signalsfoundry/vision-status/model"
)

// SensorStatus is the last resolved status of one sensor position.
type SensorStatus struct {
	Position model.SensorPosition
	Status   model.VisionSystemStatus
}

// statusMap records the last resolved status per sensor position. Only
// positions that have reported at least once are present. It is owned by the
// Engine and only touched under Engine.mu.
type statusMap struct {
	entries map[model.SensorPosition]model.VisionSystemStatus
}

func newStatusMap() *statusMap {
	return &statusMap{entries: make(map[model.SensorPosition]model.VisionSystemStatus)}
}

func (m *statusMap) put(pos model.SensorPosition, status model.VisionSystemStatus) {
	m.entries[pos] = status
}

func (m *statusMap) get(pos model.SensorPosition) (model.VisionSystemStatus, bool) {
	s, ok := m.entries[pos]
	return s, ok
}

func (m *statusMap) isNormal(pos model.SensorPosition) bool {
	s, ok := m.entries[pos]
	return ok && s == model.VisionNormal
}

// sorted returns the entries in ascending position ordinal.
func (m *statusMap) sorted() []SensorStatus {
	out := make([]SensorStatus, 0, len(m.entries))
	for pos, s := range m.entries {
		out = append(out, SensorStatus{Position: pos, Status: s})
	}
	slices.SortFunc(out, func(a, b SensorStatus) int {
		return int(a.Position) - int(b.Position)
	})
	return out
}

// overall folds the entries in position order. NORMAL and CLOSED overwrite
// the running result; the first DISABLED entry ends the fold as DISABLED.
// An empty map is CLOSED.
func (m *statusMap) overall() model.VisionSystemStatus {
	return foldOverall(m.sorted())
}

func foldOverall(entries []SensorStatus) model.VisionSystemStatus {
	result := model.VisionClosed
	for _, e := range entries {
		switch e.Status {
		case model.VisionNormal:
			result = model.VisionNormal
		case model.VisionClosed:
			result = model.VisionClosed
		default:
			return model.VisionDisabled
		}
	}
	return result
}

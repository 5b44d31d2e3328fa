package coordinator

import (
	"github.com/scenelayer/compositor/displaylist"
	"github.com/scenelayer/compositor/fingerprint"
)

// imageTemplate is a registered AddImage payload.
type imageTemplate struct {
	w, h  int
	bytes []byte
}

// sceneStore owns every piece of scene state the coordinator accumulates
// across ingress messages: registered fonts and images, stored display
// lists, and the current root stacking context per pipeline. It implements
// flatten.DisplayListSource and asset.ImageSource directly, so the
// coordinator can hand itself to the flattener and scheduler.
type sceneStore struct {
	fonts        map[fingerprint.FontID][]byte
	images       map[fingerprint.ImageID]imageTemplate
	displayLists map[fingerprint.DisplayListID]*displaylist.DisplayList
	roots        map[fingerprint.PipelineID]*displaylist.RootStackingContext
}

func newSceneStore() *sceneStore {
	return &sceneStore{
		fonts:        make(map[fingerprint.FontID][]byte),
		images:       make(map[fingerprint.ImageID]imageTemplate),
		displayLists: make(map[fingerprint.DisplayListID]*displaylist.DisplayList),
		roots:        make(map[fingerprint.PipelineID]*displaylist.RootStackingContext),
	}
}

func (s *sceneStore) addFont(id fingerprint.FontID, bytes []byte) {
	s.fonts[id] = bytes
}

func (s *sceneStore) addImage(id fingerprint.ImageID, w, h int, bytes []byte) {
	s.images[id] = imageTemplate{w: w, h: h, bytes: normalizeImage(w, h, bytes)}
}

// addDisplayList stores dl under id. Older epochs of the same pipeline are
// not evicted here; evictOlderEpochs drops them when a root stacking
// context is set (lifecycle rule in spec §3).
func (s *sceneStore) addDisplayList(id fingerprint.DisplayListID, dl *displaylist.DisplayList) {
	s.displayLists[id] = dl
}

// evictOlderEpochs drops every stored display list belonging to pipeline
// whose epoch is strictly lower than keep (spec §3 "Lifecycles": destroyed
// when superseded by a higher epoch for the same pipeline).
func (s *sceneStore) evictOlderEpochs(pipeline fingerprint.PipelineID, keep fingerprint.Epoch) {
	for id, dl := range s.displayLists {
		if dl.Pipeline == pipeline && dl.Epoch < keep {
			delete(s.displayLists, id)
		}
	}
}

func (s *sceneStore) setRoot(root *displaylist.RootStackingContext) {
	s.roots[root.PipelineID] = root
}

// DisplayList implements flatten.DisplayListSource.
func (s *sceneStore) DisplayList(id fingerprint.DisplayListID) (*displaylist.DisplayList, bool) {
	dl, ok := s.displayLists[id]
	return dl, ok
}

// RootStackingContext implements flatten.DisplayListSource, resolving an
// Iframe item's target pipeline to its current root.
func (s *sceneStore) RootStackingContext(pipeline fingerprint.PipelineID) (*displaylist.RootStackingContext, bool) {
	r, ok := s.roots[pipeline]
	return r, ok
}

// ImageBytes implements asset.ImageSource.
func (s *sceneStore) ImageBytes(id fingerprint.ImageID) (w, h int, bytes []byte, ok bool) {
	t, ok := s.images[id]
	return t.w, t.h, t.bytes, ok
}

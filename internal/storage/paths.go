package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Blobs resolves the content-addressed filesystem paths spec §6
// "Persisted state" describes, rooted at a configured storage
// directory: projects/<id>/<track>.{wav,mp3},
// transitions/<projectId>/<transitionId>.mp3,
// drafts/<draftId>/transition.mp3,
// mix_segments/<projectId>/transition_<a>_<b>.wav.
type Blobs struct {
	root string
}

// NewBlobs returns a Blobs rooted at root, creating it if necessary.
func NewBlobs(root string) (*Blobs, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create blob root: %w", err)
	}
	return &Blobs{root: root}, nil
}

// ProjectTrackPath returns the path for a project's copy of one track
// audio file, in the given extension ("wav" or "mp3").
func (b *Blobs) ProjectTrackPath(projectID, trackID, ext string) string {
	return filepath.Join(b.root, "projects", projectID, trackID+"."+ext)
}

// TransitionPath returns the path for a project's rendered transition.
func (b *Blobs) TransitionPath(projectID, transitionID string) string {
	return filepath.Join(b.root, "transitions", projectID, transitionID+".mp3")
}

// DraftTransitionPath returns the path for a preview/draft transition
// render, keyed by its own draft ID rather than a project.
func (b *Blobs) DraftTransitionPath(draftID string) string {
	return filepath.Join(b.root, "drafts", draftID, "transition.mp3")
}

// MixSegmentPath returns the path for one assembled mix's transition
// segment between tracks a and b.
func (b *Blobs) MixSegmentPath(projectID, trackAID, trackBID string) string {
	return filepath.Join(b.root, "mix_segments", projectID, fmt.Sprintf("transition_%s_%s.wav", trackAID, trackBID))
}

// WriteAtomic writes data to path by first writing to a sibling temp
// file and renaming it into place, so readers never observe a partial
// write (spec §6: "replacements are atomic: write to temp + rename").
func WriteAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: create parent dir for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("storage: rename temp file into %s: %w", path, err)
	}
	return nil
}

// Delete removes the blob at path, ignoring a not-found error. Used by
// internal/jobtoken cleanup callbacks to discard partial artifacts from
// a cancelled or failed job.
func Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

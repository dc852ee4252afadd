package engine

import (
	"fmt"

	"github.com/piwi3910/LaserNest/internal/model"
	"github.com/piwi3910/LaserNest/internal/numeric"
)

// PartSource is where the parts of a run come from: either crop selections
// over a rendered preview or whole uploaded files.
type PartSource interface {
	parts() []model.Part
}

// SelectionSource holds user-drawn crop selections and their cropped previews.
type SelectionSource struct {
	Selections []model.Selection
	Previews   []model.CroppedPreview
}

// FileSource holds parsed uploaded files.
type FileSource struct {
	Files []model.SourceFile
}

func (s SelectionSource) parts() []model.Part {
	previews := make(map[string]model.CroppedPreview, len(s.Previews))
	for _, p := range s.Previews {
		previews[p.SelectionID] = p
	}

	var out []model.Part
	for i, sel := range s.Selections {
		pv, ok := previews[sel.ID]
		if !ok {
			continue
		}
		w := numeric.ValidOrDefault(pv.Width, numeric.Positive, model.DefaultPartSize)
		h := numeric.ValidOrDefault(pv.Height, numeric.Positive, model.DefaultPartSize)
		name := sel.Name
		if name == "" {
			name = fmt.Sprintf("Selection %d", i+1)
		}
		id := sel.ID
		if id == "" {
			id = fmt.Sprintf("sel-%d", i+1)
		}
		out = append(out, model.Part{
			ID:         id,
			Name:       name,
			Width:      w,
			Height:     h,
			PathLength: 2 * (w + h),
		})
	}
	return out
}

func (s FileSource) parts() []model.Part {
	out := make([]model.Part, 0, len(s.Files))
	for i, f := range s.Files {
		w := numeric.ValidOrDefault(f.Width, numeric.Positive, model.DefaultPartSize)
		h := numeric.ValidOrDefault(f.Height, numeric.Positive, model.DefaultPartSize)
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("File %d", i+1)
		}
		p := model.Part{
			ID:         fmt.Sprintf("file-%d", i+1),
			Name:       name,
			Width:      w,
			Height:     h,
			PathLength: 2 * (w + h),
		}
		if sel := f.SelectedPathLength(); numeric.Positive(sel) {
			p.PathLength = sel
			p.ExactPath = true
		}
		out = append(out, p)
	}
	return out
}

// Normalize converts a part source into the ordered list of parts to nest.
// Order follows the input so layouts can be matched back to previews.
func Normalize(src PartSource) ([]model.Part, error) {
	if src == nil {
		return nil, ErrNoInput
	}
	parts := src.parts()
	if len(parts) == 0 {
		return nil, ErrNoInput
	}
	return parts, nil
}

// ResolveSource picks selections when at least one has a matching preview
// and falls back to the uploaded files otherwise.
func ResolveSource(selections []model.Selection, previews []model.CroppedPreview, files []model.SourceFile) PartSource {
	sel := SelectionSource{Selections: selections, Previews: previews}
	if len(sel.parts()) > 0 {
		return sel
	}
	return FileSource{Files: files}
}

package paintcore

import "golang.org/x/text/unicode/norm"

// LayerProps holds the rendering properties of one layer or sublayer.
// Immutable; shared between snapshots.
type LayerProps struct {
	id         int
	sublayerID int
	title      string
	opacity    uint8
	blendMode  BlendMode
	hidden     bool
	censored   bool
	fixed      bool
}

// ID returns the layer id, unique within its list.
func (lp *LayerProps) ID() int { return lp.id }

// SublayerID returns the owning stroke context for sublayer props,
// zero for regular layers.
func (lp *LayerProps) SublayerID() int { return lp.sublayerID }

// Title returns the layer title.
func (lp *LayerProps) Title() string { return lp.title }

// Opacity returns the layer opacity, 0 to 255.
func (lp *LayerProps) Opacity() uint8 { return lp.opacity }

// BlendMode returns the layer's compositing mode.
func (lp *LayerProps) BlendMode() BlendMode { return lp.blendMode }

// Visible reports whether the layer participates in compositing.
func (lp *LayerProps) Visible() bool { return !lp.hidden }

// Censored reports whether the layer is marked censored.
func (lp *LayerProps) Censored() bool { return lp.censored }

// Fixed reports whether the layer is pinned in place.
func (lp *LayerProps) Fixed() bool { return lp.fixed }

// renderChanged reports whether a property that affects flattened
// output differs between the two props. Title and fixed do not.
func (lp *LayerProps) renderChanged(o *LayerProps) bool {
	return lp.opacity != o.opacity ||
		lp.blendMode != o.blendMode ||
		lp.hidden != o.hidden ||
		lp.censored != o.censored
}

// normTitle canonicalizes a layer title. Collaborative clients send
// mixed-normalization UTF-8; NFC keeps titles comparable.
func normTitle(title string) string {
	return norm.NFC.String(title)
}

// TransientLayerProps is a uniquely owned, mutable LayerProps under
// construction.
type TransientLayerProps struct {
	p LayerProps
}

// NewTransientLayerProps copies immutable props into mutable form.
func NewTransientLayerProps(lp *LayerProps) *TransientLayerProps {
	return &TransientLayerProps{p: *lp}
}

// Persist freezes the props into immutable, shareable form.
func (tlp *TransientLayerProps) Persist() *LayerProps {
	lp := tlp.p
	return &lp
}

// ID returns the layer id.
func (tlp *TransientLayerProps) ID() int { return tlp.p.id }

// SetOpacity sets the layer opacity.
func (tlp *TransientLayerProps) SetOpacity(opacity uint8) { tlp.p.opacity = opacity }

// SetBlendMode sets the compositing mode.
func (tlp *TransientLayerProps) SetBlendMode(mode BlendMode) { tlp.p.blendMode = mode }

// SetCensored marks or unmarks the layer censored.
func (tlp *TransientLayerProps) SetCensored(censored bool) { tlp.p.censored = censored }

// SetFixed pins or unpins the layer.
func (tlp *TransientLayerProps) SetFixed(fixed bool) { tlp.p.fixed = fixed }

// SetTitle replaces the title, normalizing it to NFC.
func (tlp *TransientLayerProps) SetTitle(title string) { tlp.p.title = normTitle(title) }

// SetVisible shows or hides the layer.
func (tlp *TransientLayerProps) SetVisible(visible bool) { tlp.p.hidden = !visible }

// propsRef points at exactly one of an immutable or transient props
// node, mirroring the union a copy-on-write list entry needs.
type propsRef struct {
	lp  *LayerProps
	tlp *TransientLayerProps
}

// view returns a read-only peek at the current values without
// persisting a transient.
func (r propsRef) view() LayerProps {
	if r.tlp != nil {
		return r.tlp.p
	}
	return *r.lp
}

func (r propsRef) persist() *LayerProps {
	if r.tlp != nil {
		return r.tlp.Persist()
	}
	return r.lp
}

// LayerPropsList is an ordered, immutable list of layer props,
// indexed by position.
type LayerPropsList struct {
	props []*LayerProps
}

// NewLayerPropsList returns an empty props list.
func NewLayerPropsList() *LayerPropsList {
	return &LayerPropsList{}
}

// Count returns the number of entries.
func (pl *LayerPropsList) Count() int { return len(pl.props) }

// At returns the props at the given position.
func (pl *LayerPropsList) At(i int) *LayerProps { return pl.props[i] }

// IndexByID returns the position of the props with the given id, or
// -1 if absent.
func (pl *LayerPropsList) IndexByID(id int) int {
	for i, lp := range pl.props {
		if lp.id == id {
			return i
		}
	}
	return -1
}

package options

import "github.com/janpfeifer/lossopts/reduction"

// Kind of loss. Each kind has its own options type.
type Kind int

const (
	KindL1 Kind = iota
	KindKLDiv
	KindMSE
	KindBCE
	KindHingeEmbedding
	KindMultiMargin
	KindCosineEmbedding
	KindMultiLabelMargin
	KindSoftMargin
	KindMultiLabelSoftMargin
	KindTripletMargin
)

//go:generate go tool enumer -type=Kind -trimprefix=Kind -transform=snake -values -text -json -yaml kind.go

// AllowedReductions returns the reduction modes accepted by the loss kind.
// Only KindKLDiv accepts reduction.BatchMean.
func (k Kind) AllowedReductions() reduction.Set {
	if k == KindKLDiv {
		return reduction.Distribution
	}
	if !k.IsAKind() {
		return reduction.Set{}
	}
	return reduction.Standard
}

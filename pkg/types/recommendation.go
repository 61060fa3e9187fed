package types

// RecommendedSizeVersion identifies which response shape a recommendation was parsed from.
type RecommendedSizeVersion int

const (
	// RecommendedSizeV1 is the legacy shape that only carries sizeName.
	RecommendedSizeV1 RecommendedSizeVersion = iota + 1
	// RecommendedSizeV2 is the extended shape with fit scores and will-fit flags.
	RecommendedSizeV2
)

// String returns the version label.
func (v RecommendedSizeVersion) String() string {
	switch v {
	case RecommendedSizeV1:
		return "v1"
	case RecommendedSizeV2:
		return "v2"
	default:
		return "unknown"
	}
}

// BodyProfileRecommendedSize is a size recommendation computed from a user body profile.
// Fields after SizeName are only populated for RecommendedSizeV2.
type BodyProfileRecommendedSize struct {
	Version  RecommendedSizeVersion `json:"version"`
	SizeName string                 `json:"sizeName"`

	ExtProductID       string           `json:"extProductId,omitempty"`
	FitScore           float64          `json:"fitScore"`
	FitScoreDifference float64          `json:"fitScoreDifference"`
	Scenario           string           `json:"scenario,omitempty"`
	SecondFitScore     float64          `json:"secondFitScore"`
	SecondSize         string           `json:"secondSize,omitempty"`
	ThresholdFitScore  float64          `json:"thresholdFitScore"`
	WillFit            bool             `json:"willFit"`
	VirtualItem        *VirtualItem     `json:"virtualItem,omitempty"`
	WillFitForSizes    *WillFitForSizes `json:"willFitForSizes,omitempty"`
}

// VirtualItem holds the garment measurements the recommendation was computed for.
type VirtualItem struct {
	Bust   float64 `json:"bust"`
	Hip    float64 `json:"hip"`
	Inseam float64 `json:"inseam"`
	Sleeve float64 `json:"sleeve"`
	Waist  float64 `json:"waist"`
}

// WillFitForSizes reports fit per generic size.
type WillFitForSizes struct {
	ExtraLarge bool `json:"extra_large"`
	ExtraSmall bool `json:"extra_small"`
	Large      bool `json:"large"`
	Medium     bool `json:"medium"`
	Small      bool `json:"small"`
}

package parser

import "github.com/virtusize/virtusize-go/pkg/types"

// RecommendedSizeV1 parses the legacy recommendation shape, which only carries sizeName.
var RecommendedSizeV1 = Func[types.BodyProfileRecommendedSize](
	func(obj Object) (types.BodyProfileRecommendedSize, bool) {
		name, ok := obj.OptString("sizeName")
		if !ok {
			return types.BodyProfileRecommendedSize{}, false
		}
		return types.BodyProfileRecommendedSize{
			Version:  types.RecommendedSizeV1,
			SizeName: name,
		}, true
	},
)

// RecommendedSizeV2 parses the extended recommendation shape returned by the size
// recommendation service. Scores default to 0 and will-fit flags to false.
var RecommendedSizeV2 = Func[types.BodyProfileRecommendedSize](
	func(obj Object) (types.BodyProfileRecommendedSize, bool) {
		rec := types.BodyProfileRecommendedSize{
			Version:            types.RecommendedSizeV2,
			SizeName:           obj.String("sizeName", ""),
			ExtProductID:       obj.String("extProductId", ""),
			FitScore:           obj.Float("fitScore", 0),
			FitScoreDifference: obj.Float("fitScoreDifference", 0),
			Scenario:           obj.String("scenario", ""),
			SecondFitScore:     obj.Float("secondFitScore", 0),
			SecondSize:         obj.String("secondSize", ""),
			ThresholdFitScore:  obj.Float("thresholdFitScore", 0),
			WillFit:            obj.Bool("willFit", false),
		}
		if vi, ok := obj.Object("virtualItem"); ok {
			rec.VirtualItem = &types.VirtualItem{
				Bust:   vi.Float("bust", 0),
				Hip:    vi.Float("hip", 0),
				Inseam: vi.Float("inseam", 0),
				Sleeve: vi.Float("sleeve", 0),
				Waist:  vi.Float("waist", 0),
			}
		}
		if wf, ok := obj.Object("willFitForSizes"); ok {
			rec.WillFitForSizes = &types.WillFitForSizes{
				ExtraLarge: wf.Bool("extra_large", false),
				ExtraSmall: wf.Bool("extra_small", false),
				Large:      wf.Bool("large", false),
				Medium:     wf.Bool("medium", false),
				Small:      wf.Bool("small", false),
			}
		}
		return rec, true
	},
)

// RecommendedSize returns the parser for a recommendation shape.
func RecommendedSize(v types.RecommendedSizeVersion) Parser[types.BodyProfileRecommendedSize] {
	if v == types.RecommendedSizeV1 {
		return RecommendedSizeV1
	}
	return RecommendedSizeV2
}

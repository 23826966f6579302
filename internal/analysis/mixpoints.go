package analysis

import (
	"sort"

	"github.com/cancun/autodj/internal/model"
)

// DetectMixPoints derives mix-in and mix-out candidates from phrase
// boundaries and energy, per spec §4.3: the intro/outro edges, each
// phrase boundary, the post-drop bar (the phrase after the highest-energy
// phrase), and any breakdown (a phrase whose energy drops well below its
// neighbors).
func DetectMixPoints(phrases []model.Phrase, introEndS, outroStartS float64, barEnergy []float64) (in, out []model.MixPoint) {
	if len(phrases) == 0 {
		return nil, nil
	}

	in = append(in, model.MixPoint{TimeS: introEndS, Type: "intro_end", Quality: model.MixPointExcellent})
	out = append(out, model.MixPoint{TimeS: outroStartS, Type: "outro_start", Quality: model.MixPointExcellent})

	for i, p := range phrases {
		q := model.MixPointGood
		if i == 0 || i == len(phrases)-1 {
			q = model.MixPointFair
		}
		in = append(in, model.MixPoint{TimeS: p.StartS, Type: "phrase_boundary", Quality: q})
		out = append(out, model.MixPoint{TimeS: p.EndS, Type: "phrase_boundary", Quality: q})
	}

	if len(barEnergy) == len(phrases) && len(phrases) > 0 {
		peakIdx := 0
		for i, e := range barEnergy {
			if e > barEnergy[peakIdx] {
				peakIdx = i
			}
		}
		if peakIdx+1 < len(phrases) {
			out = append(out, model.MixPoint{TimeS: phrases[peakIdx+1].StartS, Type: "post_drop", Quality: model.MixPointExcellent})
		}
		for i := 1; i+1 < len(barEnergy); i++ {
			neighborAvg := (barEnergy[i-1] + barEnergy[i+1]) / 2
			if neighborAvg > 0 && barEnergy[i] < neighborAvg*0.5 {
				in = append(in, model.MixPoint{TimeS: phrases[i].StartS, Type: "breakdown", Quality: model.MixPointGood})
			}
		}
	}

	sort.Slice(in, func(i, j int) bool { return in[i].TimeS < in[j].TimeS })
	sort.Slice(out, func(i, j int) bool { return out[i].TimeS < out[j].TimeS })
	return in, out
}

package selection

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	chart "github.com/wcharczuk/go-chart"
)

// LearningCurveFile is the name of the learning curve chart in the output directory.
const LearningCurveFile = "learning_curve.png"

// Report renders the mean score against the training size, one series per model.
// A single training size has no curve and renders nothing.
func Report(s *Summary, file string) error {
	if len(s.NumTrainSamples) < 2 {
		log.Warn().
			Ints("num_train_samples", s.NumTrainSamples).
			Msg("not enough training sizes for a learning curve")
		return nil
	}

	sizes := make([]float64, len(s.NumTrainSamples))
	for i, n := range s.NumTrainSamples {
		sizes[i] = float64(n)
	}

	var series []chart.Series
	for i, name := range s.ModelNames {
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: sizes,
			YValues: s.Curve(name),
			Style: chart.Style{
				Show:        true,
				StrokeColor: chart.GetAlternateColor(i),
			},
		})
	}

	graph := chart.Chart{
		Title:      "Learning Curve",
		TitleStyle: chart.StyleShow(),
		XAxis: chart.XAxis{
			Name:      "Training samples",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		YAxis: chart.YAxis{
			Name:      "Mean score",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 1,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	if err := os.MkdirAll(filepath.Dir(file), os.ModePerm); err != nil {
		return fmt.Errorf("could not make dir for '%s': %w", file, err)
	}
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("could not create learning curve '%s': %w", file, err)
	}
	defer f.Close()
	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("could not render learning curve: %w", err)
	}
	return nil
}

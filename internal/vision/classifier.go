package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	log "github.com/sirupsen/logrus"
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
)

// Prediction is a single top-1 classification result. Confidence is a
// probability in [0,1].
type Prediction struct {
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier wraps a frozen TensorFlow graph for single-shot ingredient
// inference. The graph, session and class-name list are loaded once at
// startup and are read-only afterwards, so concurrent requests may share one
// Classifier.
type Classifier struct {
	graph      *tf.Graph
	session    *tf.Session
	classNames []string
	inputOp    string
	outputOp   string
}

// LoadClassifier loads the serialized graph and class-name list from local
// files. A missing model file is not an error: it returns (nil, nil) and the
// service runs without a classifier. A missing class list degrades to
// synthesized Class_<id> labels.
func LoadClassifier(modelPath, classesPath string) (*Classifier, error) {
	model, err := os.ReadFile(modelPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("vision: model %s not found, classification disabled", modelPath)
			return nil, nil
		}
		return nil, fmt.Errorf("read model: %w", err)
	}

	graph := tf.NewGraph()
	if err := graph.Import(model, ""); err != nil {
		return nil, fmt.Errorf("construct graph: %w", err)
	}

	session, err := tf.NewSession(graph, nil)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	classNames, err := loadClassNames(classesPath)
	if err != nil {
		log.Warnf("vision: class names unavailable (%v), labels will be synthesized", err)
		classNames = nil
	} else {
		log.Infof("vision: loaded %d class names", len(classNames))
	}

	return &Classifier{
		graph:      graph,
		session:    session,
		classNames: classNames,
		inputOp:    "input",
		outputOp:   "output",
	}, nil
}

// Predict normalizes raw image bytes and runs a single inference attempt.
// Errors propagate; the orchestrator decides how to absorb them.
func (c *Classifier) Predict(ctx context.Context, imageData []byte) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tensor, err := NormalizeImage(imageData)
	if err != nil {
		return nil, fmt.Errorf("normalize image: %w", err)
	}
	return c.Classify(tensor)
}

// Classify runs one forward pass over a normalized tensor and returns the
// top-1 class with its softmax probability.
func (c *Classifier) Classify(tensor *tf.Tensor) (*Prediction, error) {
	output, err := c.session.Run(
		map[tf.Output]*tf.Tensor{
			c.graph.Operation(c.inputOp).Output(0): tensor,
		},
		[]tf.Output{
			c.graph.Operation(c.outputOp).Output(0),
		},
		nil)
	if err != nil {
		return nil, fmt.Errorf("run inference: %w", err)
	}

	scores, ok := output[0].Value().([][]float32)
	if !ok || len(scores) == 0 || len(scores[0]) == 0 {
		return nil, fmt.Errorf("unexpected inference output shape")
	}

	probabilities := softmax(scores[0])
	classID := argmax(probabilities)

	return &Prediction{
		ClassID:    classID,
		Label:      c.labelFor(classID),
		Confidence: float64(probabilities[classID]),
	}, nil
}

// Close releases the inference session.
func (c *Classifier) Close() error {
	return c.session.Close()
}

func (c *Classifier) labelFor(classID int) string {
	if classID >= 0 && classID < len(c.classNames) {
		return c.classNames[classID]
	}
	return fmt.Sprintf("Class_%d", classID)
}

func loadClassNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse class names: %w", err)
	}
	return names, nil
}

func softmax(scores []float32) []float32 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	probs := make([]float32, len(scores))
	var sum float64
	for i, s := range scores {
		e := math.Exp(float64(s - max))
		probs[i] = float32(e)
		sum += e
	}
	for i := range probs {
		probs[i] = float32(float64(probs[i]) / sum)
	}
	return probs
}

func argmax(probabilities []float32) int {
	best := 0
	for i, p := range probabilities {
		if p > probabilities[best] {
			best = i
		}
	}
	return best
}

package pipeline

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/ocr"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/recipe"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/vision"
)

// External OCR and generation calls are unbounded dependencies; store access
// should be fast. Each stage gets its own deadline.
const (
	ocrTimeout      = 15 * time.Second
	generateTimeout = 45 * time.Second
	storeTimeout    = 5 * time.Second
)

// TextExtractor runs OCR over raw image bytes. Failures are reported in the
// result, never as an error.
type TextExtractor interface {
	Extract(ctx context.Context, imageData []byte) *ocr.Result
}

// ImageClassifier produces a top-1 ingredient prediction for raw image bytes.
type ImageClassifier interface {
	Predict(ctx context.Context, imageData []byte) (*vision.Prediction, error)
}

// Generator turns a non-empty candidate ingredient list into a recipe.
type Generator interface {
	GenerateRecipe(ctx context.Context, ingredients []string) (*recipe.Recipe, error)
}

// RecipeStore is the subset of persistence the pipeline needs.
type RecipeStore interface {
	Save(ctx context.Context, r *recipe.Recipe) (string, error)
	FindByImageHash(ctx context.Context, imageHash string) (*recipe.Recipe, error)
}

// Request is the unit of work handed to the pipeline: one uploaded image.
type Request struct {
	Filename  string
	ImageData []byte
	ImageHash string
}

// Response is the analysis result returned to the caller. It is never nil;
// each sub-result may independently be absent when its stage was skipped or
// failed. Persisted reports whether the recipe made it into the store.
type Response struct {
	Filename     string             `json:"filename"`
	OcrResult    *ocr.Result        `json:"ocr_result"`
	AIPrediction *vision.Prediction `json:"ai_prediction"`
	Recipe       *recipe.Recipe     `json:"recipe"`
	Persisted    bool               `json:"persisted"`
}

// Orchestrator sequences the analysis stages for one request at a time:
// OCR, classification, candidate merge, generation, persistence. Stage
// failures degrade their own field and never abort the request. All shared
// dependencies are read-only or internally synchronized, so one Orchestrator
// serves concurrent requests.
type Orchestrator struct {
	extractor  TextExtractor
	classifier ImageClassifier // nil when no model is configured
	generator  Generator       // nil when no credential is configured
	store      RecipeStore     // nil disables persistence
}

// New constructs an Orchestrator. Classifier, generator and store may each be
// nil; the corresponding stages are then skipped.
func New(extractor TextExtractor, classifier ImageClassifier, generator Generator, store RecipeStore) *Orchestrator {
	return &Orchestrator{
		extractor:  extractor,
		classifier: classifier,
		generator:  generator,
		store:      store,
	}
}

// Analyze runs the full pipeline for a single request, strictly sequential,
// single pass. Each external call is attempted exactly once.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) *Response {
	resp := &Response{Filename: req.Filename}

	resp.OcrResult = o.runOCR(ctx, req)
	resp.AIPrediction = o.runClassification(ctx, req)

	label := ""
	if resp.AIPrediction != nil {
		label = resp.AIPrediction.Label
	}
	candidates := recipe.MergeCandidates(label, resp.OcrResult.Candidates)
	if len(candidates) == 0 {
		log.Infof("pipeline: no ingredient candidates for %s, skipping generation", req.Filename)
		return resp
	}

	if cached := o.lookupCached(ctx, req); cached != nil {
		resp.Recipe = cached
		resp.Persisted = true
		return resp
	}

	generated := o.runGeneration(ctx, req, candidates)
	if generated == nil {
		return resp
	}
	generated.ImageHash = req.ImageHash
	generated.EnsureIdentity()

	resp.Recipe = generated
	resp.Persisted = o.persist(ctx, req, generated)
	return resp
}

func (o *Orchestrator) runOCR(ctx context.Context, req Request) *ocr.Result {
	octx, cancel := context.WithTimeout(ctx, ocrTimeout)
	defer cancel()

	result := o.extractor.Extract(octx, req.ImageData)
	if result.Status != "success" {
		log.Warnf("pipeline: ocr stage degraded for %s: %s", req.Filename, result.Message)
	}
	return result
}

func (o *Orchestrator) runClassification(ctx context.Context, req Request) *vision.Prediction {
	if o.classifier == nil {
		return nil
	}
	pred, err := o.classifier.Predict(ctx, req.ImageData)
	if err != nil {
		log.Warnf("pipeline: classification stage degraded for %s: %v", req.Filename, err)
		return nil
	}
	return pred
}

// lookupCached reuses the persisted recipe for a byte-identical upload so a
// repeated image does not burn another generation call.
func (o *Orchestrator) lookupCached(ctx context.Context, req Request) *recipe.Recipe {
	if o.store == nil || req.ImageHash == "" {
		return nil
	}
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	cached, err := o.store.FindByImageHash(sctx, req.ImageHash)
	if err != nil {
		log.Warnf("pipeline: recipe lookup failed for %s: %v", req.Filename, err)
		return nil
	}
	return cached
}

func (o *Orchestrator) runGeneration(ctx context.Context, req Request, candidates []string) *recipe.Recipe {
	if o.generator == nil {
		log.Infof("pipeline: no generator configured, skipping recipe for %s", req.Filename)
		return nil
	}
	gctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	generated, err := o.generator.GenerateRecipe(gctx, candidates)
	if err != nil {
		log.Warnf("pipeline: generation stage degraded for %s: %v", req.Filename, err)
		return nil
	}
	return generated
}

// persist saves the generated recipe. A store failure is absorbed: the recipe
// is still returned with its locally assigned id and Persisted stays false.
func (o *Orchestrator) persist(ctx context.Context, req Request, r *recipe.Recipe) bool {
	if o.store == nil {
		return false
	}
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := o.store.Save(sctx, r); err != nil {
		log.Errorf("pipeline: failed to persist recipe for %s: %v", req.Filename, err)
		return false
	}
	return true
}

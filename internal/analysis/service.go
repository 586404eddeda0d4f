package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"zipduck-backend/internal/documents"
	"zipduck-backend/internal/eligibility"
	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/ocr"
	"zipduck-backend/internal/offers"
	"zipduck-backend/internal/profiles"
	"zipduck-backend/internal/reconcile"
	"zipduck-backend/internal/resilience"
	"zipduck-backend/internal/shared/metrics"
	"zipduck-backend/internal/shared/storage/object"
	"zipduck-backend/internal/shared/telemetry"
	"zipduck-backend/internal/workqueue"
)

const maxFailureReasonRunes = 500

var _ documents.AnalysisStarter = (*Service)(nil)

// Service orchestrates the document analysis pipeline. Runs execute detached
// on the work queue; every failure is converted to a FAILED document here and
// never escapes to the uploader.
type Service struct {
	Documents  documents.Repo
	Profiles   profiles.Repo
	Outcomes   Repo
	Cache      ResultCache
	Store      object.ObjectStore
	OCR        *ocr.Service
	Extractor  *extraction.Extractor
	Reconciler *reconcile.Reconciler
	Pool       *workqueue.Pool

	OCRCall     *resilience.Caller[string]
	ExtractCall *resilience.Caller[extraction.Criteria]

	ModelID string
}

// StartAnalysis schedules the pipeline for an uploaded document.
func (s *Service) StartAnalysis(doc documents.Document) error {
	err := s.Pool.Submit(func(ctx context.Context) {
		s.run(ctx, doc)
	})
	if err != nil {
		return fmt.Errorf("schedule analysis for %s: %w", doc.ID, err)
	}
	metrics.IncAnalysisStarted()
	return nil
}

func (s *Service) run(ctx context.Context, doc documents.Document) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("analysis.panic", map[string]any{
				"documentId": doc.ID,
				"panic":      fmt.Sprint(r),
			})
			s.fail(ctx, doc.ID, fmt.Errorf("internal error during analysis"))
		}
	}()

	start := time.Now()
	if err := s.Documents.UpdateStatus(ctx, doc.ID, documents.StatusProcessing, ""); err != nil {
		telemetry.Error("analysis.mark_processing_failed", map[string]any{
			"documentId": doc.ID,
			"error":      err.Error(),
		})
		return
	}
	telemetry.Info("analysis.started", map[string]any{"documentId": doc.ID})

	outcome, err := s.analyze(ctx, doc, start)
	if err != nil {
		s.fail(ctx, doc.ID, err)
		return
	}

	if err := s.Outcomes.Create(ctx, outcome); err != nil {
		s.fail(ctx, doc.ID, fmt.Errorf("persist outcome: %w", err))
		return
	}
	if err := s.Documents.UpdateStatus(ctx, doc.ID, documents.StatusCompleted, ""); err != nil {
		telemetry.Error("analysis.mark_completed_failed", map[string]any{
			"documentId": doc.ID,
			"error":      err.Error(),
		})
		return
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(outcome.ProcessingMS))
	telemetry.Info("analysis.completed", map[string]any{
		"documentId":   doc.ID,
		"matchScore":   outcome.MatchScore,
		"eligible":     outcome.Eligible,
		"ocrQuality":   string(outcome.OCRQuality),
		"processingMs": outcome.ProcessingMS,
	})
}

func (s *Service) analyze(ctx context.Context, doc documents.Document, start time.Time) (Outcome, error) {
	result, hit := s.Cache.Get(ctx, doc.Fingerprint)
	if hit {
		metrics.IncCacheHit()
		s.Cache.Touch(ctx, doc.Fingerprint)
		telemetry.Info("analysis.cache_hit", map[string]any{
			"documentId":  doc.ID,
			"fingerprint": doc.Fingerprint,
		})
	} else {
		fresh, err := s.extract(ctx, doc)
		if err != nil {
			return Outcome{}, err
		}
		result = fresh
		s.Cache.Put(ctx, doc.Fingerprint, result)
	}

	if _, _, err := s.Reconciler.Reconcile(ctx, result.Criteria, doc.ID, time.Now()); err != nil {
		return Outcome{}, fmt.Errorf("reconcile offer: %w", err)
	}

	// Scoring uses the document's own criteria; a merge links the document
	// to the registry offer but must not change what this document says.
	extracted := offers.FromCriteria(result.Criteria, time.Now())

	var score int
	var eligible bool
	profile, err := s.Profiles.Get(ctx, doc.UserID)
	switch {
	case err == nil:
		eligible = eligibility.IsEligible(profile, extracted)
		score = eligibility.MatchScore(profile, extracted)
	case errors.Is(err, profiles.ErrNotFound):
		// No profile to evaluate against; the offer is still recorded.
		telemetry.Info("analysis.no_profile", map[string]any{"documentId": doc.ID})
	default:
		return Outcome{}, fmt.Errorf("load profile: %w", err)
	}

	return Outcome{
		ID:            uuid.NewString(),
		DocumentID:    doc.ID,
		Criteria:      result.Criteria,
		MatchScore:    score,
		Eligible:      eligible,
		OCRQuality:    result.OCRQuality,
		OCRWarning:    result.OCRWarning,
		ExtractedText: truncateRunes(result.ExtractedText, maxStoredTextRunes),
		Model:         result.Model,
		ProcessingMS:  time.Since(start).Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (s *Service) extract(ctx context.Context, doc documents.Document) (CachedResult, error) {
	body, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return CachedResult{}, fmt.Errorf("open stored document: %w", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return CachedResult{}, fmt.Errorf("read stored document: %w", err)
	}

	var usedOCR bool
	text, err := s.OCRCall.Call(ctx, func(ctx context.Context) (string, error) {
		out, viaOCR, err := s.OCR.ExtractText(ctx, data, doc.ContentType)
		usedOCR = viaOCR
		return out, err
	})
	if err != nil {
		return CachedResult{}, fmt.Errorf("extract text: %w", err)
	}

	quality, warning := ocr.Grade(text, usedOCR)
	if usedOCR {
		telemetry.Info("analysis.ocr_graded", map[string]any{
			"documentId": doc.ID,
			"quality":    string(quality),
			"textRunes":  len([]rune(text)),
		})
	}

	criteria, err := s.ExtractCall.Call(ctx, func(ctx context.Context) (extraction.Criteria, error) {
		return s.Extractor.Extract(ctx, text)
	})
	if err != nil {
		return CachedResult{}, fmt.Errorf("extract criteria: %w", err)
	}

	return CachedResult{
		Criteria:      criteria,
		OCRQuality:    quality,
		OCRWarning:    warning,
		ExtractedText: truncateRunes(text, maxStoredTextRunes),
		Model:         s.ModelID,
	}, nil
}

func (s *Service) fail(ctx context.Context, documentID string, cause error) {
	reason := truncateRunes(cause.Error(), maxFailureReasonRunes)
	if err := s.Documents.UpdateStatus(ctx, documentID, documents.StatusFailed, reason); err != nil {
		telemetry.Error("analysis.mark_failed_failed", map[string]any{
			"documentId": documentID,
			"error":      err.Error(),
		})
	}
	metrics.IncAnalysisFailed()
	telemetry.Error("analysis.failed", map[string]any{
		"documentId": documentID,
		"reason":     reason,
	})
}

// Outcome returns the analysis outcome for a document, enforcing ownership.
func (s *Service) Outcome(ctx context.Context, userID, documentID string) (documents.Document, Outcome, error) {
	doc, err := s.Documents.GetByID(ctx, documentID)
	if err != nil {
		return documents.Document{}, Outcome{}, err
	}
	if doc.UserID != userID {
		return documents.Document{}, Outcome{}, documents.ErrNotFound
	}

	outcome, err := s.Outcomes.GetByDocumentID(ctx, documentID)
	if err != nil {
		return doc, Outcome{}, err
	}
	return doc, outcome, nil
}

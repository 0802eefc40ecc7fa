package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/jonathan/cv-analyzer/internal/db"
	"github.com/jonathan/cv-analyzer/internal/ingestion"
	"github.com/jonathan/cv-analyzer/internal/messages"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/server/middleware"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// formOverhead is the room left for non-file multipart fields and boundaries.
const formOverhead = 1 << 20

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// analyzeResponse is the success envelope of the analyze endpoints.
type analyzeResponse struct {
	Status     string        `json:"status"`
	Message    string        `json:"message"`
	AnalysisID string        `json:"analysis_id,omitempty"`
	Data       *types.Report `json:"data"`
}

// analyzeTextRequest is the JSON body of /api/analyze/text and /api/analyze/stream.
type analyzeTextRequest struct {
	CVText    string `json:"cv_text" validate:"required"`
	JobOffer  string `json:"job_offer" validate:"required"`
	Language  string `json:"language,omitempty" validate:"omitempty,bcp47_language_tag"`
	Candidate string `json:"candidate,omitempty" validate:"omitempty,max=200"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "CV Analyzer API",
		"status":  "running",
		"version": Version,
	})
}

// handleHealth reports taxonomy size and, when configured, database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.analyzer.Taxonomy().Stats()
	resp := map[string]any{
		"status":  "ok",
		"version": Version,
		"taxonomy": map[string]int{
			"categories": stats.Categories,
			"skills":     stats.Skills,
		},
	}

	status := http.StatusOK
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			requestLogger(r).Warn("database ping failed", "error", err)
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp["database"] = "ok"
		}
	}
	s.jsonResponse(w, status, resp)
}

// requestLanguage picks the report language: an explicit value wins over
// Accept-Language; with neither the analyzer default is used.
func (s *Server) requestLanguage(explicit string, r *http.Request) language.Tag {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return messages.Match(explicit)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return messages.Match(accept)
	}
	return s.analyzer.Language()
}

// handleAnalyze accepts a multipart upload with a PDF résumé in cv_file and
// the job offer text in job_offer.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadBytes
	if r.ContentLength > limit+formOverhead {
		p := messages.NewPrinter(s.requestLanguage("", r))
		s.errorResponse(w, http.StatusBadRequest, p.Sprintf(messages.FileTooLarge, limit>>20))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	if err := r.ParseMultipartForm(limit + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			p := messages.NewPrinter(s.requestLanguage("", r))
			s.errorResponse(w, http.StatusBadRequest, p.Sprintf(messages.FileTooLarge, limit>>20))
			return
		}
		s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Field: "body", Message: "multipart form required"}).Error())
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	lang := s.requestLanguage(r.FormValue("language"), r)
	p := messages.NewPrinter(lang)

	file, header, err := r.FormFile("cv_file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Field: "cv_file", Message: "required"}).Error())
		return
	}
	defer file.Close()

	contentType := ingestion.DetectContentType(header.Filename, header.Header.Get("Content-Type"))
	if contentType != ingestion.ContentTypePDF {
		s.errorResponse(w, http.StatusBadRequest, p.Sprintf(messages.FileMustBePDF))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		requestLogger(r).Error("failed to read upload", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	if int64(len(data)) > limit {
		s.errorResponse(w, http.StatusBadRequest, p.Sprintf(messages.FileTooLarge, limit>>20))
		return
	}

	jobOffer := r.FormValue("job_offer")
	if strings.TrimSpace(jobOffer) == "" {
		s.errorResponse(w, http.StatusBadRequest, p.Sprintf(messages.JobOfferRequired))
		return
	}

	doc, err := ingestion.ExtractDocument(header.Filename, contentType, data)
	if err != nil {
		requestLogger(r).Error("document extraction failed", "filename", header.Filename, "error", err)
		cause := err
		if inner := errors.Unwrap(err); inner != nil {
			cause = inner
		}
		s.errorResponse(w, http.StatusInternalServerError, p.Sprintf(messages.ExtractionFailed, cause.Error()))
		return
	}

	in := pipeline.Input{
		CVText:   doc.Text,
		JobText:  jobOffer,
		CVInfo:   doc.Info(header.Filename, len(data)),
		Language: lang,
	}
	s.analyze(w, r, in, r.FormValue("candidate"))
}

// handleAnalyzeText analyzes a résumé given as plain text.
func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTextRequest(w, r)
	if !ok {
		return
	}
	in := pipeline.Input{
		CVText:   req.CVText,
		JobText:  req.JobOffer,
		Language: s.requestLanguage(req.Language, r),
	}
	s.analyze(w, r, in, req.Candidate)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, in pipeline.Input, candidate string) {
	report, err := s.analyzer.Analyze(r.Context(), in)
	if err != nil {
		s.analysisError(w, r, err)
		return
	}

	resp := analyzeResponse{
		Status:  "success",
		Message: messages.NewPrinter(s.reportLanguage(in.Language)).Sprintf(messages.AnalysisComplete),
		Data:    report,
	}
	if id, ok := s.store(r, in, candidate, report); ok {
		resp.AnalysisID = id
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) analysisError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		requestLogger(r).Error("analysis failed", "error", err)
		s.errorResponse(w, status, "analysis failed")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// handleAnalyzeStream runs an analysis and streams stage progress as
// Server-Sent Events, ending with a result or error event.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTextRequest(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log := requestLogger(r)
	in := pipeline.Input{
		CVText:   req.CVText,
		JobText:  req.JobOffer,
		Language: s.requestLanguage(req.Language, r),
		OnProgress: func(ev pipeline.ProgressEvent) {
			if err := sse.WriteEvent(eventProgress, ev); err != nil {
				log.Debug("failed to write progress event", "error", err)
			}
		},
	}

	report, err := s.analyzer.Analyze(r.Context(), in)
	if err != nil {
		if HTTPStatus(err) >= http.StatusInternalServerError {
			log.Error("streamed analysis failed", "error", err)
			sse.WriteError("analysis failed")
			return
		}
		sse.WriteError(err.Error())
		return
	}

	resp := analyzeResponse{
		Status:  "success",
		Message: messages.NewPrinter(s.reportLanguage(in.Language)).Sprintf(messages.AnalysisComplete),
		Data:    report,
	}
	if id, ok := s.store(r, in, req.Candidate, report); ok {
		resp.AnalysisID = id
	}
	if err := sse.WriteEvent(eventResult, resp); err != nil {
		log.Debug("failed to write result event", "error", err)
	}
}

func (s *Server) decodeTextRequest(w http.ResponseWriter, r *http.Request) (*analyzeTextRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formOverhead)

	var req analyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Field: "body", Message: "invalid JSON"}).Error())
		return nil, false
	}
	if err := s.validator.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err).Error())
		return nil, false
	}
	return &req, true
}

func (s *Server) reportLanguage(tag language.Tag) language.Tag {
	if tag == language.Und {
		return s.analyzer.Language()
	}
	return tag
}

// store persists a report when history is enabled. Failures are logged and
// do not fail the request.
func (s *Server) store(r *http.Request, in pipeline.Input, candidate string, report *types.Report) (string, bool) {
	if s.db == nil || !s.cfg.StoreAnalyses {
		return "", false
	}
	if candidate == "" {
		candidate, _ = middleware.GetSubject(r)
	}

	// The client may have gone away; the record is still worth keeping.
	ctx := context.WithoutCancel(r.Context())
	saved, err := s.db.SaveAnalysis(ctx, db.AnalysisInput{
		Candidate: candidate,
		Language:  s.reportLanguage(in.Language).String(),
		CVText:    in.CVText,
		JobText:   in.JobText,
		Report:    report,
	})
	if err != nil {
		requestLogger(r).Warn("failed to store analysis", "error", err)
		return "", false
	}
	return saved.ID.String(), true
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, HTTPStatus(errHistoryDisabled), errHistoryDisabled.Error())
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistoryLimit {
			msg := fmt.Sprintf("must be between 1 and %d", maxHistoryLimit)
			s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Field: "limit", Message: msg}).Error())
			return
		}
		limit = n
	}

	analyses, err := s.db.ListAnalyses(r.Context(), limit)
	if err != nil {
		requestLogger(r).Error("failed to list analyses", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	if analyses == nil {
		analyses = []db.Analysis{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analyses": analyses, "count": len(analyses)})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, HTTPStatus(errHistoryDisabled), errHistoryDisabled.Error())
		return
	}

	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Field: "id", Message: "invalid UUID"}).Error())
		return
	}

	analysis, err := s.db.GetAnalysis(r.Context(), id)
	if err != nil {
		requestLogger(r).Error("failed to get analysis", "id", id, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to get analysis")
		return
	}
	if analysis == nil {
		notFound := &ErrNotFound{Resource: "analysis", ID: idStr}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

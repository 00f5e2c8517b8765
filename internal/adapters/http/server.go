package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pricescout/internal/domain"
	"pricescout/internal/ports"
	"pricescout/internal/services/pricescraper"
)

// Server exposes the engine's control and query surface to the surrounding
// admin system.
type Server struct {
	jobs     ports.JobService
	products ports.ProductRepository
	store    ports.JobRepository
	results  ports.ResultRepository
	validate *validator.Validate
	log      *logrus.Logger
}

func New(jobs ports.JobService, products ports.ProductRepository, store ports.JobRepository, results ports.ResultRepository, log *logrus.Logger) *Server {
	return &Server{
		jobs:     jobs,
		products: products,
		store:    store,
		results:  results,
		validate: validator.New(),
		log:      log,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.getHealthz)
	r.Post("/jobs", s.postJob)
	r.Get("/jobs/current", s.getCurrentJob)
	r.Post("/jobs/current/stop", s.postStop)
	r.Get("/jobs/{id}", s.getJob)
	r.Get("/scrapers", s.getScrapers)
	r.Get("/scrapers/health", s.getScraperHealth)
	r.Get("/products/{id}/results", s.getProductResults)
	return r
}

type jobRequest struct {
	Name       string           `json:"name" validate:"required"`
	SupplierID string           `json:"supplierId" validate:"required"`
	Config     jobConfigRequest `json:"config" validate:"required"`
}

type jobConfigRequest struct {
	Sources             []string `json:"sources" validate:"required,min=1"`
	BatchSize           int      `json:"batchSize" validate:"omitempty,min=1"`
	DelayBetweenBatches int      `json:"delayBetweenBatches" validate:"omitempty,min=0"` // milliseconds
	MaxRetries          int      `json:"maxRetries" validate:"omitempty,min=0"`
	ConfidenceThreshold float64  `json:"confidenceThreshold" validate:"omitempty,gte=0,lte=1"`
}

func (s *Server) postJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Rejecting here keeps job rows out of the store while another job holds
	// the slot; the launch below still guards against a lost race.
	if s.jobs.IsJobRunning() {
		respondError(w, http.StatusConflict, pricescraper.ErrJobAlreadyRunning.Error())
		return
	}

	products, err := s.products.ListProductsBySupplier(r.Context(), req.SupplierID)
	if err != nil {
		s.log.WithError(err).Error("loading supplier products failed")
		respondError(w, http.StatusInternalServerError, "loading products failed")
		return
	}
	if len(products) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "supplier has no products to price")
		return
	}

	job := domain.ScrapeJob{
		ID:         uuid.New().String(),
		Name:       req.Name,
		SupplierID: req.SupplierID,
		Status:     domain.JobPending,
		Config: domain.JobConfig{
			Sources:             req.Config.Sources,
			BatchSize:           req.Config.BatchSize,
			DelayBetweenBatches: time.Duration(req.Config.DelayBetweenBatches) * time.Millisecond,
			MaxRetries:          req.Config.MaxRetries,
			ConfidenceThreshold: req.Config.ConfidenceThreshold,
		},
		TotalProducts: len(products),
	}
	if err := s.store.CreateJob(r.Context(), job); err != nil {
		s.log.WithError(err).Error("creating job record failed")
		respondError(w, http.StatusInternalServerError, "creating job failed")
		return
	}

	// The job outlives the request.
	if err := s.jobs.Launch(context.WithoutCancel(r.Context()), job, products); err != nil {
		if errors.Is(err, pricescraper.ErrJobAlreadyRunning) {
			// The row was created for a job that will never run.
			if derr := s.store.DeleteJob(r.Context(), job.ID); derr != nil {
				s.log.WithError(derr).WithField("job_id", job.ID).Warn("removing unstarted job record failed")
			}
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.log.WithError(err).Error("launching job failed")
		respondError(w, http.StatusInternalServerError, "launching job failed")
		return
	}
	respond(w, http.StatusAccepted, map[string]string{"jobId": job.ID})
}

func (s *Server) postStop(w http.ResponseWriter, r *http.Request) {
	if err := s.jobs.Stop(); err != nil {
		if errors.Is(err, pricescraper.ErrNoJobRunning) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.log.WithError(err).Error("stopping job failed")
		respondError(w, http.StatusInternalServerError, "stopping job failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getCurrentJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.CurrentJob()
	if !ok {
		respondError(w, http.StatusNotFound, "no job")
		return
	}
	respond(w, http.StatusOK, jobResponse(job, s.jobs.IsJobRunning()))
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		s.log.WithError(err).Error("loading job failed")
		respondError(w, http.StatusInternalServerError, "loading job failed")
		return
	}
	respond(w, http.StatusOK, jobResponse(job, false))
}

func (s *Server) getScrapers(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"scrapers": s.jobs.AvailableScrapers()})
}

func (s *Server) getScraperHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.jobs.ScraperHealth(r.Context()))
}

func (s *Server) getProductResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.results.ListResultsByProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.log.WithError(err).Error("loading results failed")
		respondError(w, http.StatusInternalServerError, "loading results failed")
		return
	}
	respond(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func jobResponse(job domain.ScrapeJob, running bool) map[string]any {
	resp := map[string]any{
		"job":     job.Progress(),
		"name":    job.Name,
		"running": running,
	}
	return resp
}

func respond(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respond(w, code, map[string]string{"error": msg})
}

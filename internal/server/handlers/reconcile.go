package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/dnmerge"
	"github.com/agentstation/dnmerge/internal/ingest"
	"github.com/agentstation/dnmerge/internal/server/cache"
	"github.com/agentstation/dnmerge/internal/server/middleware"
	"github.com/agentstation/dnmerge/internal/server/response"
	"github.com/agentstation/dnmerge/pkg/constants"
	pkgerrors "github.com/agentstation/dnmerge/pkg/errors"
	"github.com/agentstation/dnmerge/pkg/logging"
)

// Multipart form fields of a reconcile upload.
const (
	FieldPrimary         = "primary"
	FieldSecondary       = "secondary"
	FieldPrimaryFormat   = "primaryFormat"
	FieldSecondaryFormat = "secondaryFormat"
)

// ReconcileResult is the JSON body of a reconcile run with ?format=json.
type ReconcileResult struct {
	Report      *dnmerge.Report `json:"report"`
	ResultID    string          `json:"resultId"`
	DownloadURL string          `json:"downloadUrl"`
	ExpiresAt   utc.Time        `json:"expiresAt"`
}

// HandleReconcile handles POST /api/v1/reconcile.
//
// The request is a multipart form with the files primary and secondary.
// By default the response is the comparison workbook as an attachment.
// With ?format=json it is a ReconcileResult whose workbook stays
// downloadable from /results/{id} until it expires.
func (h *Handlers) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.FromContext(r.Context())
	h.metrics.ObserveUpload(r.ContentLength)

	asJSON, preview, err := h.parseQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error(), "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxUploadSize)
	if err := r.ParseMultipartForm(h.limits.MaxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, fmt.Sprintf("Uploads are limited to %d bytes", tooLarge.Limit))
			return
		}
		response.BadRequest(w, "Invalid multipart form", err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	primary, closePrimary, err := formSource(r, FieldPrimary, FieldPrimaryFormat)
	if err != nil {
		response.BadRequest(w, err.Error(), "")
		return
	}
	defer closePrimary()
	secondary, closeSecondary, err := formSource(r, FieldSecondary, FieldSecondaryFormat)
	if err != nil {
		response.BadRequest(w, err.Error(), "")
		return
	}
	defer closeSecondary()

	client, err := h.app.Client()
	if err != nil {
		logger.Error().Err(err).Msg("Reconciliation client not available")
		response.ServiceUnavailable(w, "Reconciliation client not available")
		return
	}

	outcome, err := client.Run(r.Context(), dnmerge.Input{Primary: primary, Secondary: secondary})
	if err != nil {
		status, code := response.Classify(err)
		h.metrics.ObserveFailure(code, time.Since(start))
		logger.Warn().Err(err).Int("status", status).Str("code", code).Msg("Reconcile request failed")
		response.ErrorFromType(w, err)
		return
	}
	h.metrics.ObserveRun(outcome.Summary(), time.Since(start))

	var buf bytes.Buffer
	if err := outcome.WriteXLSX(&buf); err != nil {
		logger.Error().Err(err).Str("run_id", outcome.RunID).Msg("Failed to export workbook")
		response.InternalError(w)
		return
	}

	entry := &cache.Entry{
		RunID:    outcome.RunID,
		Filename: constants.DefaultOutputFile,
		Summary:  outcome.Summary(),
		Workbook: buf.Bytes(),
	}
	h.results.Put(entry)

	if !asJSON {
		serveWorkbook(w, entry)
		return
	}

	if preview == 0 {
		preview = h.limits.PreviewRows
	}
	response.OK(w, ReconcileResult{
		Report:      outcome.Report(preview),
		ResultID:    entry.RunID,
		DownloadURL: h.limits.PathPrefix + "/results/" + entry.RunID,
		ExpiresAt:   entry.ExpiresAt,
	})
}

// HandleResult handles GET /api/v1/results/{id}.
func (h *Handlers) HandleResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry, ok := h.results.Get(id)
	h.metrics.ObserveDownload(ok)
	if !ok {
		err := fmt.Errorf("%w (results expire after %s)", pkgerrors.NewNotFoundError("result", id), h.results.TTL())
		response.ErrorFromType(w, err)
		return
	}
	serveWorkbook(w, entry)
}

// parseQuery reads the response format and preview size.
func (h *Handlers) parseQuery(r *http.Request) (asJSON bool, preview int, err error) {
	q := r.URL.Query()
	switch f := q.Get("format"); f {
	case "", "xlsx":
	case "json":
		asJSON = true
	default:
		return false, 0, fmt.Errorf("unsupported response format %q", f)
	}
	if p := q.Get("preview"); p != "" {
		preview, err = strconv.Atoi(p)
		if err != nil || preview < 0 {
			return false, 0, fmt.Errorf("invalid preview %q", p)
		}
	}
	return asJSON, preview, nil
}

// formSource opens the uploaded file of field. The format is taken from
// formatField when set, otherwise from the file name.
func formSource(r *http.Request, field, formatField string) (dnmerge.Source, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return dnmerge.Source{}, nil, fmt.Errorf("missing file field %q", field)
		}
		return dnmerge.Source{}, nil, fmt.Errorf("reading %s: %w", field, err)
	}

	format, err := ingest.ParseFormat(r.FormValue(formatField))
	if err != nil {
		_ = file.Close()
		return dnmerge.Source{}, nil, err
	}

	return dnmerge.Source{
		Name:   fileName(header, field),
		Reader: file,
		Format: format,
	}, func() { _ = file.Close() }, nil
}

func fileName(header *multipart.FileHeader, field string) string {
	if header.Filename == "" {
		return field
	}
	return header.Filename
}

// serveWorkbook writes a stored workbook as an attachment.
func serveWorkbook(w http.ResponseWriter, e *cache.Entry) {
	w.Header().Set("Content-Type", constants.XLSXContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": e.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(e.Size()))
	w.Header().Set(middleware.ResultIDHeader, e.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(e.Workbook)
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/backoffice-tools/receipt-ocr/constants"
	"github.com/backoffice-tools/receipt-ocr/internal/common"
	"github.com/backoffice-tools/receipt-ocr/internal/entity"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "receipt-ocr-api",
		"version": serviceVersion,
	})
}

// handleOCRProcess accepts a multipart receipt image and returns the raw
// recognized text plus a confidence estimate.
func (s *Server) handleOCRProcess(w http.ResponseWriter, r *http.Request) {
	path, cleanup, ok := s.receiveImage(w, r)
	if !ok {
		return
	}
	defer cleanup()

	res, err := s.extractor.Extract(r.Context(), path)
	if err != nil {
		s.logger.Error("ocr failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "OCR processing failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"text":       res.Text,
		"confidence": round2(res.Confidence),
	})
}

// handleReceiptProcess runs OCR and structuring in one call.
func (s *Server) handleReceiptProcess(w http.ResponseWriter, r *http.Request) {
	path, cleanup, ok := s.receiveImage(w, r)
	if !ok {
		return
	}
	defer cleanup()

	res, err := s.processor.ProcessImage(r.Context(), path)
	if err != nil {
		if errors.Is(err, common.ErrEmptyInput) {
			s.writeError(w, http.StatusBadRequest, "no text recognized in the image")
			return
		}
		s.logger.Error("receipt processing failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "receipt processing failed")
		return
	}
	res.Confidence = round2(res.Confidence)
	s.writeJSON(w, http.StatusOK, res)
}

type structureRequest struct {
	OCRText string `json:"ocrText"`
}

// handleStructure turns already-recognized OCR text into the structured
// receipt record.
func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	var req structureRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}

	rec, err := s.parser.Parse(req.OCRText)
	if err != nil {
		if errors.Is(err, common.ErrEmptyInput) {
			s.writeError(w, http.StatusBadRequest, "ocrText is empty")
			return
		}
		s.logger.Error("structure failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "structuring failed")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleSheetsWrite validates the record against the write schema and
// appends it to the month sheet.
func (s *Server) handleSheetsWrite(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if err := validateWriteRequest(body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var rec entity.Receipt
	if err := json.Unmarshal(body, &rec); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if rec.PaymentMethod == "" {
		rec.PaymentMethod = constants.DefaultPaymentMethod
	}

	res, err := s.store.Append(&rec)
	if err != nil {
		s.logger.Error("sheet append failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to write to the workbook")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"rowNumber": res.RowNumber,
		"sheetName": res.SheetName,
	})
}

// handleSheetsHistory lists receipts recorded for one month.
func (s *Server) handleSheetsHistory(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 1000 {
			limit = n
		}
	}

	receipts, err := s.store.History(month, limit)
	if err != nil {
		s.logger.Error("history read failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"receipts": receipts,
		"total":    len(receipts),
	})
}

// receiveImage pulls the uploaded image out of the multipart form, enforces
// the size cap and content type, and spools it to a temp file for tesseract.
// The returned cleanup removes the temp file.
func (s *Server) receiveImage(w http.ResponseWriter, r *http.Request) (string, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("image must be at most %d bytes", s.maxUpload))
			return "", nil, false
		}
		s.writeError(w, http.StatusBadRequest, "image file is required")
		return "", nil, false
	}
	defer func() { _ = file.Close() }()

	ext, err := imageExt(header)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return "", nil, false
	}

	tmp, err := os.CreateTemp("", "receipt-*"+ext)
	if err != nil {
		s.logger.Error("temp file failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not store upload")
		return "", nil, false
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("image must be at most %d bytes", s.maxUpload))
			return "", nil, false
		}
		s.logger.Error("spool upload failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not store upload")
		return "", nil, false
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		s.logger.Error("close upload failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not store upload")
		return "", nil, false
	}

	return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, true
}

func imageExt(header *multipart.FileHeader) (string, error) {
	if ext := filepath.Ext(header.Filename); constants.IsImageExt(ext) {
		return strings.ToLower(ext), nil
	}
	switch header.Header.Get("Content-Type") {
	case "image/jpeg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	}
	return "", errors.New("please upload a jpg or png image")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
